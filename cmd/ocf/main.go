// Command ocf browses the assets held by a property server, exports them and
// serves them over HTTP.
package main

import (
	"fmt"
	"os"

	// backends register themselves with the property server registry
	_ "github.com/ajitpratap0/ocf/pkg/propertyserver/memory"
	_ "github.com/ajitpratap0/ocf/pkg/propertyserver/mongodb"
	_ "github.com/ajitpratap0/ocf/pkg/propertyserver/mysql"
	_ "github.com/ajitpratap0/ocf/pkg/propertyserver/postgres"
	_ "github.com/ajitpratap0/ocf/pkg/propertyserver/rest"
)

var version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
