package model_test

import (
	"fmt"

	"github.com/matzehuels/lineup/pkg/model"
)

func ExampleRanking_SortBy() {
	rows := model.Rows{{"a": 3}, {"a": 1}, {"a": 2}}
	r := model.NewRanking(rows)
	a := model.NewNumberColumn(&model.Descriptor{Type: model.KindNumber, Column: "a"})
	if err := r.Push(a); err != nil {
		panic(err)
	}

	_ = r.SortBy(a, true)
	fmt.Println(r.Order())

	_ = r.SortBy(a, false)
	fmt.Println(r.Order())
	// Output:
	// [1 2 0]
	// [0 2 1]
}

func ExampleCompositeNumberColumn() {
	mean, _ := model.NewCompositeNumberColumn(&model.Descriptor{Type: model.KindMean})
	for _, name := range []string{"a", "b", "c"} {
		_ = mean.Push(model.NewNumberColumn(&model.Descriptor{Type: model.KindNumber, Column: name}))
	}

	row := model.Row{"a": 10, "c": 4}
	fmt.Println(mean.Label(row, 0))
	// Output: 4.67
}

func ExampleFlatten() {
	stack, _ := model.NewCompositeNumberColumn(&model.Descriptor{Type: model.KindStack})
	for _, name := range []string{"a", "b"} {
		c := model.NewNumberColumn(&model.Descriptor{Type: model.KindNumber, Column: name, Width: 100})
		_ = stack.Push(c)
	}

	cols, width := model.Flatten(stack, 5)
	for _, fc := range cols {
		fmt.Println(fc.Column.Desc().Column, fc.Offset, fc.Width)
	}
	fmt.Println(width)
	// Output:
	// a 0 100
	// b 105 100
	// 205
}
