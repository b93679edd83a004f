// Package invoke calls a resolved method and packages its outcome as a
// tagged Result.
//
// Call never lets a failure escape: a returned error and a panic both
// become invocation_failure errors. Package maps the return value onto the
// Kind tags; objects are registered through a callback so that the caller
// decides how handles are issued.
//
// Results cross a byte boundary (WebAssembly linear memory, C heap) in the
// form produced by Encode:
//
//	offset 0  kind  u32 LE
//	offset 4  size  u32 LE
//	offset 8  data  size bytes
package invoke
