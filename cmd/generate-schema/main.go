// Command generate-schema writes the JSON Schema of the DittoList
// configuration file, for editor completion and CI validation.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/marmos91/dittolist/pkg/config"
)

func main() {
	schemaJSON, err := generateSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	outputFile := "config.schema.json"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if err := os.WriteFile(outputFile, schemaJSON, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("JSON schema written to %s\n", outputFile)
}

// generateSchema reflects config.Config into an indented JSON Schema.
// Field names follow the mapstructure tags, which are the keys viper reads.
// No field is required since every section has defaults.
func generateSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               "mapstructure",
		Mapper:                     mapDuration,
	}

	schema := reflector.Reflect(&config.Config{})
	schema.Title = "DittoList Configuration"
	schema.Description = "Configuration schema for the DittoList directory listing server"

	return json.MarshalIndent(schema, "", "  ")
}

// mapDuration describes time.Duration fields the way they are written in
// config files ("30s", "2m").
func mapDuration(t reflect.Type) *jsonschema.Schema {
	if t != reflect.TypeOf(time.Duration(0)) {
		return nil
	}
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "Duration such as 500ms, 30s or 2m",
	}
}
