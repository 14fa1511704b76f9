package schema

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// ContractSchemaName names the component describing a lookup response.
const ContractSchemaName = "CategoryAttributes"

//go:embed contract.yaml
var contractDocument []byte

var (
	contractOnce sync.Once
	contractDoc  *openapi3.T
	contractErr  error
)

// ContractDocument returns the raw OpenAPI document describing the lookup
// endpoint so hosts can publish it next to the service.
func ContractDocument() []byte {
	return append([]byte(nil), contractDocument...)
}

// Contract returns the parsed and validated lookup contract.
func Contract() (*openapi3.T, error) {
	contractOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(contractDocument)
		if err != nil {
			contractErr = fmt.Errorf("schema: load contract: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			contractErr = fmt.Errorf("schema: validate contract: %w", err)
			return
		}
		contractDoc = doc
	})
	return contractDoc, contractErr
}

// ValidatePayload checks a raw lookup payload against the contract.
func ValidatePayload(data []byte) error {
	doc, err := Contract()
	if err != nil {
		return err
	}
	ref, ok := doc.Components.Schemas[ContractSchemaName]
	if !ok || ref == nil || ref.Value == nil {
		return fmt.Errorf("schema: contract has no %s component", ContractSchemaName)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := ref.Value.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
