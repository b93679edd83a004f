// Package wasmhost exposes the bridge to WebAssembly guests as a wazero
// host module.
//
// All pointers are offsets into the calling module's linear memory, and
// strings are NUL-terminated UTF-8. invoke_method reads argc 8-byte
// little-endian slots at args_ptr and writes this record at out_ptr:
//
//	offset 0   data_ptr  u32  out_ptr+12, or 0 when size is 0
//	offset 4   kind      u32  result kind tag
//	offset 8   size      u32  payload length
//	offset 12  payload
//
// A payload larger than out_cap-12 is replaced by an out_of_bounds Error
// result. The return value is always the kind that was written.
package wasmhost
