package config_test

import (
	"fmt"

	"github.com/ajitpratap0/ocf/pkg/config"
)

func ExampleNewDefaultConfig() {
	cfg := config.NewDefaultConfig()
	cfg.PropertyServer.Type = "rest"
	cfg.PropertyServer.URL = "https://metadata.example.com/ocf"

	fmt.Println(cfg.Paging.MaxCacheSize, cfg.Validate() == nil)

	// Output:
	// 100 true
}
