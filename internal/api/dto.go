package api

import "github.com/starford/shelf/internal/models"

// Book is the response type for a single book (aliased from the domain layer).
type Book = models.Book

// BookRequest documents the create/update body. Numeric fields also accept
// numeric strings; empty or unparseable values are treated as absent.
type BookRequest struct {
	Title  string `json:"title" example:"Dune" validate:"required"`
	Author string `json:"author,omitempty" example:"Frank Herbert"`
	ISBN   string `json:"isbn,omitempty" example:"978-0441013593"`
	Year   int    `json:"year,omitempty" example:"1965"`
	Copies int    `json:"copies,omitempty" example:"3"`
}
