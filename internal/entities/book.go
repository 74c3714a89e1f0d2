package entities

// Book is a catalogued book record. ID is assigned by the store; a record is
// only ever replaced wholesale, never partially updated.
type Book struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	ISBN     string `gorm:"index;size:20" json:"isbn" yaml:"isbn"`
	Title    string `gorm:"size:512" json:"title" yaml:"title"`
	Author   string `gorm:"size:512" json:"author" yaml:"author"`
	CoverURL string `gorm:"size:2048" json:"cover_url" yaml:"cover_url"`
}

func (Book) TableName() string {
	return "books"
}
