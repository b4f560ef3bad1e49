//go:build cgo

package main

// #include "markupconv.h"
import "C"
import (
	"fmt"
	"unsafe"
)

// === One-shot conversion ===

//export markupconv_convert
func markupconv_convert(html *C.char, dialect *C.char) C.MarkupconvResult {
	c, err := defaultConverter(C.GoString(dialect))
	if err != nil {
		return makeError(err.Error())
	}
	out, err := c.Convert(C.GoString(html))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(out)
}

//export markupconv_convert_report
func markupconv_convert_report(html *C.char, dialect *C.char) C.MarkupconvResult {
	c, err := defaultConverter(C.GoString(dialect))
	if err != nil {
		return makeError(err.Error())
	}
	report, err := reportJSON(c, C.GoString(html))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(report)
}

// === Configured converters ===

//export markupconv_converter_new
func markupconv_converter_new(dialect *C.char, optionsJSON *C.char) C.int {
	opts := ""
	if optionsJSON != nil {
		opts = C.GoString(optionsJSON)
	}
	c, err := newConverter(C.GoString(dialect), opts)
	if err != nil {
		return -1
	}
	return C.int(handles.add(c))
}

//export markupconv_converter_convert
func markupconv_converter_convert(handle C.int, html *C.char) C.MarkupconvResult {
	c, ok := handles.get(int(handle))
	if !ok {
		return makeError(fmt.Sprintf("invalid converter handle: %d", handle))
	}
	out, err := c.Convert(C.GoString(html))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(out)
}

//export markupconv_converter_free
func markupconv_converter_free(handle C.int) {
	handles.remove(int(handle))
}

//export markupconv_info
func markupconv_info() C.MarkupconvResult {
	return makeResult(infoJSON())
}

// === Memory Management ===

//export markupconv_result_free
func markupconv_result_free(result C.MarkupconvResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// helpers

func makeResult(data string) C.MarkupconvResult {
	return C.MarkupconvResult{
		data:  C.CString(data),
		len:   C.int(len(data)),
		error: nil,
	}
}

func makeError(msg string) C.MarkupconvResult {
	return C.MarkupconvResult{
		data:  nil,
		len:   0,
		error: C.CString(msg),
	}
}
