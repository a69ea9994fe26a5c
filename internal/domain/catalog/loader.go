package catalog

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed data/menu.yaml
var defaultMenu []byte

type menuFile struct {
	Items []menuItem `yaml:"items"`
}

type menuItem struct {
	ID          int     `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	Image       string  `yaml:"image"`
	Rating      float64 `yaml:"rating"`
	Popular     bool    `yaml:"popular"`
}

// Default 內嵌的預設菜單
func Default() (*Catalog, error) {
	return parse(defaultMenu)
}

// LoadFile reads a menu YAML file. An empty path falls back to the embedded menu.
func LoadFile(fs afero.Fs, path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(b)
}

func parse(b []byte) (*Catalog, error) {
	var mf menuFile
	if err := yaml.Unmarshal(b, &mf); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}

	items := make([]model.CatalogItem, 0, len(mf.Items))
	for _, mi := range mf.Items {
		items = append(items, model.CatalogItem{
			ID:          mi.ID,
			Name:        mi.Name,
			Description: mi.Description,
			// yaml 浮點數轉 decimal 後固定到分
			Price:    decimal.NewFromFloat(mi.Price).Round(2),
			Category: model.Category(mi.Category),
			Image:    mi.Image,
			Rating:   decimal.NewFromFloat(mi.Rating),
			Popular:  mi.Popular,
		})
	}
	return New(items)
}
