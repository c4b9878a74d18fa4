package paging_test

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/ocf/pkg/paging"
)

// Example pages through 25 keywords ten at a time.
func Example() {
	keywords := make([]string, 25)
	for i := range keywords {
		keywords[i] = fmt.Sprintf("keyword-%02d", i)
	}

	fetches := 0
	fetcher := paging.PageFetcherFunc[string](func(_ context.Context, start, size int) ([]string, error) {
		fetches++
		end := min(start+size, len(keywords))
		return keywords[start:end], nil
	})

	it, err := paging.New(len(keywords), 10, fetcher, nil, paging.WithName("SearchKeywords"))
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	var last string
	for it.HasNext() {
		last, _ = it.Next(ctx)
	}

	fmt.Println(it.ElementCount(), last, fetches)

	// Output:
	// 25 keyword-24 3
}
