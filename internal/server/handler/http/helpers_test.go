package http_test

import (
	"strconv"

	"github.com/atinyakov/todokeeper/internal/models"
)

func jsonNumber(n int64) string { return strconv.FormatInt(n, 10) }

func identity(id int64, name string) models.Identity {
	return models.Identity{UserID: id, Username: name}
}
