package rulecatalog

// Raw document shape as parsed from YAML, before validation and compilation.
// yaml.v3 decodes map sections into these; validator/v10 enforces the
// required structure so a malformed document fails at load, not per lookup

type rawDocument struct {
	StatusMappings   map[string]map[string][]string `yaml:"status_mappings" validate:"required,min=1"`
	PlanTypeMappings map[string][]string            `yaml:"plan_type_mappings" validate:"required,min=1"`
	CountryMappings  map[string]rawCountry          `yaml:"country_mappings" validate:"required,min=1,dive"`
	RegionMappings   map[string]rawRegion           `yaml:"region_mappings" validate:"dive"`
	DatePatterns     rawDatePatterns                `yaml:"date_expression_patterns" validate:"required"`
	MetricMappings   map[string][]string            `yaml:"metric_mappings" validate:"required,min=1"`
	FuzzyMatching    rawFuzzy                       `yaml:"fuzzy_matching" validate:"required"`
	LookupStrategies map[string]rawLookup           `yaml:"lookup_strategies" validate:"required,min=1,dive"`
	ImplicitFilters  map[string]rawImplicit         `yaml:"implicit_filters" validate:"dive"`
}

type rawCountry struct {
	Canonical string `yaml:"canonical" validate:"required"`
	Code      string `yaml:"code" validate:"required,len=2"`
	// Variants may be empty; canonical and code alone are enough to resolve
	Variants []string `yaml:"variants"`
	DBValues []string `yaml:"db_values" validate:"required,min=1"`
}

type rawRegion struct {
	Name      string   `yaml:"name" validate:"required"`
	Variants  []string `yaml:"variants"`
	Countries []string `yaml:"countries" validate:"required,min=1"`
}

type rawDatePatterns struct {
	Relative []rawDatePattern `yaml:"relative" validate:"required,min=1,dive"`
	Fiscal   []rawDatePattern `yaml:"fiscal" validate:"required,min=1,dive"`
	Named    []rawDatePattern `yaml:"named" validate:"required,min=1,dive"`
}

type rawDatePattern struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Type    string `yaml:"type" validate:"required"`
	// Value is the fixed magnitude for patterns without a numeric capture
	// ("upcoming" -> 12 months)
	Value int `yaml:"value" validate:"gte=0"`
}

type rawFuzzy struct {
	Enabled    bool           `yaml:"enabled"`
	Method     string         `yaml:"method" validate:"required,oneof=token_sort_ratio ratio"`
	Thresholds map[string]int `yaml:"thresholds" validate:"required,min=1,dive,gte=0,lte=100"`
}

type rawLookup struct {
	PrimaryKey      string   `yaml:"primary_key" validate:"required"`
	SearchFields    []string `yaml:"search_fields" validate:"required,min=1"`
	FuzzyEnabled    bool     `yaml:"fuzzy_enabled"`
	CacheEnabled    bool     `yaml:"cache_enabled"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds" validate:"gte=0"`
	ScanCap         int      `yaml:"scan_cap" validate:"gte=0"`
}

type rawImplicit struct {
	Default          string   `yaml:"default" validate:"required"`
	OverrideKeywords []string `yaml:"override_keywords" validate:"required,min=1"`
}
