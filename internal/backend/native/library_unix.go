//go:build !windows

package native

import (
	"github.com/ebitengine/purego"
)

func loadLibrary(path string) (uintptr, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil || handle == 0 {
		return 0, err
	}
	return handle, nil
}

func getSymbol(handle uintptr, symbol string) (uintptr, error) {
	return purego.Dlsym(handle, symbol)
}

func closeLibrary(handle uintptr) error {
	if handle == 0 {
		return nil
	}
	return purego.Dlclose(handle)
}
