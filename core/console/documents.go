package console

import (
	"fmt"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/cache"
	"github.com/wanjohi/go-curator/core/mutation"
	"github.com/wanjohi/go-curator/utils"
)

// Conversions between the typed api shapes and the uniform document form
// the cache stores. Collections have no server id, so their name doubles as
// the cache document id.

func collectionToDocument(col api.Collection) (cache.Document, error) {
	doc, err := utils.StructToMap(col)
	if err != nil {
		return nil, err
	}
	doc["id"] = col.Name
	return doc, nil
}

func documentToCollection(doc cache.Document) (api.Collection, error) {
	return utils.MapToStruct[api.Collection](doc)
}

func recordToDocument(rec api.Record) (cache.Document, error) {
	return utils.StructToMap(rec)
}

func documentToRecord(doc cache.Document) (api.Record, error) {
	return utils.MapToStruct[api.Record](doc)
}

func userToDocument(user api.User) (cache.Document, error) {
	return utils.StructToMap(user)
}

func documentToUser(doc cache.Document) (api.User, error) {
	return utils.MapToStruct[api.User](doc)
}

func settingToDocument(setting api.Setting) (cache.Document, error) {
	return utils.StructToMap(setting)
}

func documentToSetting(doc cache.Document) (api.Setting, error) {
	return utils.MapToStruct[api.Setting](doc)
}

func entryToRecords(entry *cache.Entry) ([]api.Record, error) {
	records := make([]api.Record, 0, len(entry.Items))
	for _, doc := range entry.Items {
		rec, err := documentToRecord(doc)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func entryToCollections(entry *cache.Entry) ([]api.Collection, error) {
	cols := make([]api.Collection, 0, len(entry.Items))
	for _, doc := range entry.Items {
		col, err := documentToCollection(doc)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached collection: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func entryToUsers(entry *cache.Entry) ([]api.User, error) {
	users := make([]api.User, 0, len(entry.Items))
	for _, doc := range entry.Items {
		user, err := documentToUser(doc)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// outcomeError maps a terminal mutation outcome to the error the UI sees.
func outcomeError(outcome *mutation.Outcome) error {
	switch outcome.State {
	case mutation.StateRejected:
		return &ValidationError{Fields: outcome.FieldErrors}
	case mutation.StateFailed:
		return outcome.Err
	default:
		return nil
	}
}
