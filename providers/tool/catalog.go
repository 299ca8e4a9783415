package tool

import (
	"slices"
	"strings"
	"sync"
)

// Catalog manages a collection of tools with thread-safe operations.
// Names are case-insensitive.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]GenericTool
}

// NewCatalog creates a new empty tool catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tools: make(map[string]GenericTool),
	}
}

// NewCatalogWithTools creates a catalog pre-populated with tools.
func NewCatalogWithTools(tools ...GenericTool) *Catalog {
	catalog := NewCatalog()
	catalog.AddTools(tools...)
	return catalog
}

// AddTools registers tools under their lowercased ToolInfo().Name, replacing
// any tool already registered under that name.
func (c *Catalog) AddTools(tools ...GenericTool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		c.tools[strings.ToLower(t.ToolInfo().Name)] = t
	}
}

// Get retrieves a tool by name.
func (c *Catalog) Get(name string) (GenericTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, exists := c.tools[strings.ToLower(name)]
	return t, exists
}

// Has reports whether a tool with the given name exists.
func (c *Catalog) Has(name string) bool {
	_, exists := c.Get(name)
	return exists
}

// Names returns the registered tool names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tools))
	for name := range c.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Infos returns the metadata of every tool, sorted by name.
func (c *Catalog) Infos() []Info {
	names := c.Names()
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		if t, ok := c.Get(name); ok {
			infos = append(infos, t.ToolInfo())
		}
	}
	return infos
}

// Size returns the number of tools in the catalog.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}
