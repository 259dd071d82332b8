package dashboard

import (
	"errors"
	"fmt"
)

// BootstrapOptions extends Options with the file based pieces resolved at startup.
type BootstrapOptions struct {
	Options
	ManifestPath string
}

// Bootstrap resolves page definitions and the embedded template renderer,
// validates every page, then builds the service.
func Bootstrap(opts BootstrapOptions) (*Service, error) {
	if opts.Pages == nil {
		pages, err := LoadPageSet(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
		opts.Pages = pages
	}
	if opts.Charts == nil {
		opts.Charts = NewChartAdapter(WithChartAssetsHost(DefaultEChartsAssetsHost()))
	}
	if opts.Renderer == nil {
		renderer, err := NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("dashboard: template renderer: %w", err)
		}
		opts.Renderer = renderer
	}
	validator := opts.ConfigValidator
	if validator == nil {
		validator = NewJSONSchemaValidator()
		opts.ConfigValidator = validator
	}
	var pageErr error
	for _, name := range opts.Pages.Names() {
		def, _ := opts.Pages.Lookup(name)
		if err := ValidatePage(validator, def); err != nil {
			pageErr = errors.Join(pageErr, fmt.Errorf("page %s: %w", name, err))
		}
	}
	if pageErr != nil {
		return nil, pageErr
	}
	return NewService(opts.Options), nil
}
