package group

type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description"`
}
