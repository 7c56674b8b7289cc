package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"
)

//export flatdb_open_dir
func flatdb_open_dir(path *C.char) C.int {
	return C.int(openCatalog(C.GoString(path), nil))
}

// flatdb_open_git opens a git catalog in path, cloning gitUrl into it when
// gitUrl is not NULL.
//
//export flatdb_open_git
func flatdb_open_git(path *C.char, gitUrl *C.char) C.int {
	if gitUrl == nil {
		return C.int(openGitCatalog(C.GoString(path), nil))
	}
	url := C.GoString(gitUrl)
	return C.int(openGitCatalog(C.GoString(path), &url))
}

//export flatdb_open_remote
func flatdb_open_remote(url *C.char) C.int {
	return C.int(openRemoteCatalog(C.GoString(url)))
}

//export flatdb_close
func flatdb_close(handle C.int) {
	closeHandle(int(handle))
}

// flatdb_query runs one statement against database and returns a JSON
// response the caller releases with flatdb_free.
//
//export flatdb_query
func flatdb_query(handle C.int, database *C.char, query *C.char) *C.char {
	return C.CString(string(runQuery(int(handle), C.GoString(database), C.GoString(query))))
}

//export flatdb_free
func flatdb_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func main() {}
