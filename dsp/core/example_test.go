package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
)

func ExampleClamp() {
	fmt.Println(core.Clamp(1.4, -1, 1), core.Clamp(-0.25, -1, 1))

	// Output:
	// 1 -0.25
}

func ExampleIsPowerOfTwo() {
	fmt.Println(core.IsPowerOfTwo(1024), core.IsPowerOfTwo(1000))

	// Output:
	// true false
}
