//go:build !with_cv
// +build !with_cv

package main

import (
	"fmt"

	"github.com/xaionaro-go/scrollrate/config"
	"github.com/xaionaro-go/scrollrate/preprocess"
)

func newPreprocessor(name string) (preprocess.Preprocessor, error) {
	switch name {
	case config.PreprocessorBild:
		return preprocess.NewBild(), nil
	case config.PreprocessorCV:
		return nil, fmt.Errorf("the binary was built without OpenCV support (build tag 'with_cv')")
	default:
		return nil, fmt.Errorf("unknown preprocessor '%s'", name)
	}
}
