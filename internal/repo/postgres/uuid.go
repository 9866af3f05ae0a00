package postgres

import "github.com/google/uuid"

// ids are UUID columns; anything else cannot match a row
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
