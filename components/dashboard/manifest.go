package dashboard

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// Page definition names shipped by default.
const (
	PageAnalytics = "analytics"
	PageCustomer  = "customer"
)

// Mount ids shared with the page templates.
const (
	MountIDCategories       = "categoriesChart"
	MountIDPreferences      = "preferencesChart"
	MountIDInteractionTypes = "interactionTypesChart"
	MountIDBestSellers      = "bestSellersChart"
	MountIDCustomerTrends   = "customerTrendsChart"
	MountIDConversionRate   = "conversionRateChart"
	MountIDSatisfaction     = "satisfactionChart"
	MountIDHeatmap          = "engagementHeatmap"
	MountIDJourney          = "customerJourney"
	MountIDChartsError      = "chartsError"
	MountIDRecommendations  = "recommendationsContainer"
	MountIDInteractionModal = "newInteractionModal"
)

// PageManifestDocument models a YAML manifest describing dashboard pages.
type PageManifestDocument struct {
	Version string           `json:"version" yaml:"version"`
	Pages   []PageDefinition `json:"pages" yaml:"pages"`
	Source  string           `json:"-" yaml:"-"`
}

// PageDefinition lists the mount points of one page, in render order.
type PageDefinition struct {
	Name           string            `json:"name" yaml:"name"`
	Title          string            `json:"title" yaml:"title"`
	TitleLocalized map[string]string `json:"title_localized,omitempty" yaml:"title_localized,omitempty"`
	Mounts         []Mount           `json:"mounts" yaml:"mounts"`
}

// NewPage instantiates the definition with its default titles.
func (d PageDefinition) NewPage() *Page {
	return NewPage(d.Name, d.Title, d.Mounts)
}

// LocalizedPage instantiates the definition with page and mount titles
// resolved for locale.
func (d PageDefinition) LocalizedPage(locale string) *Page {
	mounts := make([]Mount, len(d.Mounts))
	for i, m := range d.Mounts {
		m.Title = m.TitleForLocale(locale)
		mounts[i] = m
	}
	return NewPage(d.Name, d.TitleForLocale(locale), mounts)
}

// PageSet indexes page definitions by name.
type PageSet struct {
	pages map[string]PageDefinition
}

// NewPageSet indexes the definitions. Later duplicates replace earlier ones.
func NewPageSet(defs ...PageDefinition) *PageSet {
	set := &PageSet{pages: make(map[string]PageDefinition, len(defs))}
	for _, def := range defs {
		set.pages[def.Name] = def
	}
	return set
}

// Lookup returns the definition for name.
func (s *PageSet) Lookup(name string) (PageDefinition, bool) {
	if s == nil {
		return PageDefinition{}, false
	}
	def, ok := s.pages[name]
	return def, ok
}

// Names returns the page names sorted.
func (s *PageSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.pages))
	for name := range s.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPages returns the analytics and customer pages.
func DefaultPages() []PageDefinition {
	return []PageDefinition{
		{
			Name:  PageAnalytics,
			Title: "Customer Service Analytics",
			Mounts: []Mount{
				{ID: "kpiTotalCustomers", Kind: MountKPI, Title: "Total Customers", Config: map[string]any{"metric": "total_customers", "icon": "fas fa-users"}},
				{ID: "kpiProductsSold", Kind: MountKPI, Title: "Products Sold", Config: map[string]any{"metric": "total_products_sold", "icon": "fas fa-shopping-cart"}},
				{ID: "kpiInteractions", Kind: MountKPI, Title: "Interactions", Config: map[string]any{"metric": "total_interactions", "icon": "fas fa-comments"}},
				{ID: MountIDChartsError, Kind: MountChartsError},
				{ID: MountIDCategories, Kind: MountCategoriesChart},
				{ID: MountIDPreferences, Kind: MountPreferencesChart, Title: "Customer Preferences"},
				{ID: MountIDInteractionTypes, Kind: MountInteractionTypesChart},
				{ID: MountIDBestSellers, Kind: MountBestSellersChart, Title: "Best Selling Products"},
				{ID: MountIDCustomerTrends, Kind: MountCustomerTrendsChart, Title: "Customer Trends"},
				{ID: MountIDConversionRate, Kind: MountConversionRateChart, Title: "Conversion Rate"},
				{ID: MountIDSatisfaction, Kind: MountSatisfactionChart, Title: "Customer Satisfaction"},
				{ID: MountIDHeatmap, Kind: MountHeatmap, Title: "Engagement Heatmap"},
				{ID: MountIDJourney, Kind: MountJourney, Title: "Customer Journey"},
			},
		},
		{
			Name:  PageCustomer,
			Title: "Customer Details",
			Mounts: []Mount{
				{ID: MountIDRecommendations, Kind: MountRecommendations, Title: "Recommended Products"},
				{ID: MountIDInteractionModal, Kind: MountInteractionModal, Title: "New Interaction"},
			},
		},
	}
}

// LoadPageSet reads the manifest at path, or returns the defaults when path is empty.
func LoadPageSet(path string) (*PageSet, error) {
	if path == "" {
		return NewPageSet(DefaultPages()...), nil
	}
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return NewPageSet(doc.Pages...), nil
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*PageManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*PageManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc PageManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *PageManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seenPages := make(map[string]struct{}, len(doc.Pages))
	for idx, page := range doc.Pages {
		if page.Name == "" {
			return fmt.Errorf("dashboard: manifest page at index %d is missing name", idx)
		}
		if _, exists := seenPages[page.Name]; exists {
			return fmt.Errorf("dashboard: manifest duplicates page %s", page.Name)
		}
		seenPages[page.Name] = struct{}{}
		seenMounts := make(map[string]struct{}, len(page.Mounts))
		for midx, mount := range page.Mounts {
			if mount.ID == "" {
				return fmt.Errorf("dashboard: page %s mount at index %d is missing id", page.Name, midx)
			}
			if mount.Kind == "" {
				return fmt.Errorf("dashboard: page %s mount %s is missing kind", page.Name, mount.ID)
			}
			if _, exists := seenMounts[mount.ID]; exists {
				return fmt.Errorf("dashboard: page %s duplicates mount %s", page.Name, mount.ID)
			}
			seenMounts[mount.ID] = struct{}{}
		}
	}
	return nil
}

func (doc *PageManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Pages {
		if doc.Pages[i].Title == "" {
			doc.Pages[i].Title = doc.Pages[i].Name
		}
		doc.Pages[i].normalizeLocalizedFields()
	}
}
