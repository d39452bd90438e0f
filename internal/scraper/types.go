package scraper

import "crowdfund-scraper/internal/model"

type FieldType string

const (
	FieldString FieldType = "string"
	FieldFloat  FieldType = "float"
	FieldInt    FieldType = "int"
)

// IsNumeric - требует ли тип приведения к числу
func (t FieldType) IsNumeric() bool {
	return t == FieldFloat || t == FieldInt
}

// FieldDescriptor описывает, откуда в карточке брать поле и как его приводить.
// Если Attr задан, читается атрибут, иначе видимый текст элемента.
type FieldDescriptor struct {
	Key      string    `yaml:"key"`
	Selector string    `yaml:"selector"`
	Type     FieldType `yaml:"type"`
	Attr     string    `yaml:"attr,omitempty"`
}

type PaginatorSelector struct {
	Selector   string `yaml:"selector"`
	CursorAttr string `yaml:"cursor_attr"`
}

type Selectors struct {
	CardSelector string            `yaml:"card_selector"`
	Paginator    PaginatorSelector `yaml:"paginator"`
	Fields       []FieldDescriptor `yaml:"fields"`
}

// DefaultCrowdcubeSelectors - разметка листинга Crowdcube
func DefaultCrowdcubeSelectors() *Selectors {
	return &Selectors{
		CardSelector: "section.cc-card",
		Paginator: PaginatorSelector{
			Selector:   "div#cc-opportunities__paginate",
			CursorAttr: "data-nextcursor",
		},
		Fields: []FieldDescriptor{
			{Key: model.KeyTitle, Selector: "h1", Type: FieldString},
			{Key: model.KeyAmountRaised, Selector: "div.cc-card__stats div.cc-inlineStats__group > .cc-inlineStats__value", Type: FieldFloat},
			{Key: model.KeyPercentage, Selector: "div.cc-card__stats > div.cc-card__progress > div.cc-progressBar > span:nth-of-type(1)", Type: FieldInt},
			{Key: model.KeyLink, Selector: "a:nth-of-type(1)", Type: FieldString, Attr: "href"},
			{Key: model.KeyDaysLeft, Selector: "div.cc-card__daysLeft", Type: FieldInt},
			{Key: model.KeySummary, Selector: "div.cc-card__body > p", Type: FieldString},
		},
	}
}
