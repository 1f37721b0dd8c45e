package mcpserver

// BookFormatContract describes the book record accepted by create_book and
// update_book.
const BookFormatContract = `# Shelf Book Format

A book is a JSON object:

` + "```" + `json
{
  "title": "Dune",            // REQUIRED on create, non-empty after trimming
  "author": "Frank Herbert",  // OPTIONAL
  "isbn": "9780441013593",    // OPTIONAL, free text
  "year": 1965,               // OPTIONAL integer
  "copies": 2                 // OPTIONAL integer, must be >= 0
}
` + "```" + `

## Rules

1. Text fields are trimmed of surrounding whitespace before they are stored.
2. ` + "`" + `year` + "`" + ` and ` + "`" + `copies` + "`" + ` accept a number or a numeric string.
   Anything else (null, "", "abc") is treated as not provided.
3. ` + "`" + `update_book` + "`" + ` changes only the fields you pass; omitted fields keep their value.
4. ` + "`" + `id` + "`" + `, ` + "`" + `created_at` + "`" + ` and ` + "`" + `updated_at` + "`" + ` are assigned by the server.
5. ` + "`" + `search_books` + "`" + ` matches a case-insensitive substring of title, author or isbn.
`
