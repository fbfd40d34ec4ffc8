package ports

type NameTable interface {
	ItemName(id int64) string
	LocationName(id int64) string
}
