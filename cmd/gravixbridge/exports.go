package main

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
	void*    data;
	uint32_t kind;
	uint32_t size;
} GravixResult;

static size_t gravix_strnlen(const char* s, size_t n) {
	return strnlen(s, n);
}
*/
import "C"

import (
	"math"
	"unsafe"

	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/invoke"
)

var lib library

//export GravixInit
func GravixInit(configPath *C.char) C.int {
	var path string
	if configPath != nil {
		path = C.GoString(configPath)
	}
	if err := lib.init(path); err != nil {
		return C.int(errors.Code(errors.KindOf(err)))
	}
	return 0
}

//export GravixShutdown
func GravixShutdown() C.int {
	if err := lib.shutdown(); err != nil {
		return C.int(errors.Code(errors.KindOf(err)))
	}
	return 0
}

//export CreateObject
func CreateObject(typeName *C.char) C.uint64_t {
	if typeName == nil {
		return C.uint64_t(handle.Invalid)
	}
	return C.uint64_t(lib.create(C.GoString(typeName)))
}

//export DestroyObject
func DestroyObject(h C.uint64_t) C.uint32_t {
	return C.uint32_t(lib.destroy(handle.Handle(h)))
}

//export InvokeMethod
func InvokeMethod(h C.uint64_t, methodName *C.char, args *C.uint64_t, argc C.int32_t) C.GravixResult {
	if methodName == nil {
		return toC(invoke.ErrorResult(errors.NilPointer(errors.PhaseHost, "method name")))
	}
	if argc < 0 || (argc > 0 && args == nil) {
		return toC(invoke.ErrorResult(errors.InvalidInput(errors.PhaseHost, "bad argument array")))
	}

	var slots []uint64
	if argc > 0 {
		src := unsafe.Slice((*uint64)(unsafe.Pointer(args)), int(argc))
		slots = append([]uint64(nil), src...)
	}

	res := lib.call(handle.Handle(h), C.GoString(methodName), slots, readCString)
	return toC(res)
}

//export GravixFreeResult
func GravixFreeResult(res *C.GravixResult) {
	if res == nil || res.data == nil {
		return
	}
	C.free(res.data)
	res.data = nil
	res.size = 0
}

func readCString(ptr uint64, limit uint64) []byte {
	if limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	p := (*C.char)(unsafe.Pointer(uintptr(ptr)))
	n := C.gravix_strnlen(p, C.size_t(limit))
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

// toC copies the payload into C memory. String payloads get a trailing
// NUL that is not counted in size.
func toC(res invoke.Result) C.GravixResult {
	out := C.GravixResult{kind: C.uint32_t(res.Kind), size: C.uint32_t(len(res.Data))}
	if len(res.Data) == 0 {
		return out
	}

	n := len(res.Data)
	if res.Kind == invoke.String {
		n++
	}
	buf := C.malloc(C.size_t(n))
	dst := unsafe.Slice((*byte)(buf), n)
	copy(dst, res.Data)
	if res.Kind == invoke.String {
		dst[n-1] = 0
	}
	out.data = buf
	return out
}
