package build

import "errors"

// Sentinel errors naming the stage a build failed in.
var (
	ErrConfig = errors.New("element-docs: config error")
	ErrPages  = errors.New("element-docs: page error")
	ErrOutput = errors.New("element-docs: output error")
)
