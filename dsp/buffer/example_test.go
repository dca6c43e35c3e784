package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
)

func ExampleSampleBuffer() {
	b, err := buffer.New(8000, 2, 0)
	if err != nil {
		panic(err)
	}

	_ = b.Append([]int16{10, -10, 20, -20})
	b.Resize(3)

	fmt.Println(b.Data)
	fmt.Println(b.Frames(), b.Channel(0))

	// Output:
	// [10 -10 20 -20 0 0]
	// 3 [10 20 0]
}
