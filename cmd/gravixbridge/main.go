// Command gravixbridge builds the bridge as a C shared library:
//
//	go build -buildmode=c-shared -o libgravix.so ./cmd/gravixbridge
//
// The generated header declares GravixInit, GravixShutdown, CreateObject,
// DestroyObject, InvokeMethod and GravixFreeResult. Call GravixInit once
// before anything else; a NULL or empty path uses the default
// configuration. String arguments are passed as pointers to
// NUL-terminated UTF-8 in the uint64_t argument slots. Every result
// returned by InvokeMethod must be released with GravixFreeResult.
package main

func main() {}
