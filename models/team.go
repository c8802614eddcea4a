package models

type Team struct {
	ID       int     `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`
}
