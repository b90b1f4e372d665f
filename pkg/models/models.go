package models

// Book represents a book document in the books collection
type Book struct {
	ID    int64  `json:"id" bson:"id" example:"1"`
	Title string `json:"title" bson:"title" example:"Dune"`
}

// BookRequest is the body accepted by the create and update endpoints.
// Name is stored as the book title.
type BookRequest struct {
	Name string `json:"name" binding:"required" example:"Dune"`
}
