// Command gem_radar builds the radar extension as a shared library the game
// host loads. Build with -buildmode=c-shared; the host calls the exported
// RVExtension functions.
package main

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/app"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/hostapi"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"
)

var (
	// ModuleFolder holds the library file and its config.
	ModuleFolder string

	radarApp *app.App
	host     = hostapi.New(CurrentExtensionVersion, nil)
)

// init is run automatically when the library is loaded
func init() {
	ModuleFolder = moduleFolder()

	a, err := app.New(context.Background(), app.Options{
		ConfigDir: ModuleFolder,
		Version:   CurrentExtensionVersion,
	})
	if err != nil {
		// Logging is not up yet; stderr is all there is.
		fmt.Fprintf(os.Stderr, "gem_radar: initialization failed: %v\n", err)
		return
	}
	radarApp = a
	host.SetDispatcher(a.Dispatcher)
	a.Logger.Info("Extension loaded", "dir", ModuleFolder, "buildDate", BuildDate)
}

func moduleFolder() string {
	if p := libraryPath(); p != "" {
		return filepath.Dir(p)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// called by the host to get the version of the extension
//
//export RVExtensionVersion
func RVExtensionVersion(output *C.char, outputsize C.size_t) {
	reply(host.Version(), output, outputsize)
}

// called by the host with a bare command string
//
//export RVExtension
func RVExtension(output *C.char, outputsize C.size_t, input *C.char) {
	reply(host.Call(C.GoString(input)), output, outputsize)
}

// called by the host with a command and an argument array
//
//export RVExtensionArgs
func RVExtensionArgs(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	reply(host.CallArgs(C.GoString(input), parseArgsFromC(argv, argc)), output, outputsize)
}

// parseArgsFromC converts C argv array to Go string slice
func parseArgsFromC(argv **C.char, argc C.int) []string {
	if argc <= 0 || argv == nil {
		return nil
	}
	ptrs := unsafe.Slice(argv, int(argc))
	data := make([]string, 0, len(ptrs))
	for _, p := range ptrs {
		data = append(data, C.GoString(p))
	}
	return data
}

// reply copies response into the host's buffer, truncated to fit.
func reply(response string, output *C.char, outputsize C.size_t) {
	response = hostapi.Truncate(response, int(outputsize))
	if outputsize == 0 {
		return
	}
	result := C.CString(response)
	defer C.free(unsafe.Pointer(result))
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(result), C.strlen(result)+1)
}

// main runs when the library is executed directly: print the version and
// current status, then shut down cleanly.
func main() {
	if radarApp == nil {
		os.Exit(1)
	}
	fmt.Println(host.Call(":VERSION:"))
	fmt.Println(host.Call(":STATUS:"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := radarApp.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gem_radar: shutdown: %v\n", err)
		os.Exit(1)
	}
}
