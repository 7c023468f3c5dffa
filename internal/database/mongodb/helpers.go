package mongodb

import (
	"strings"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// extractDBName picks the database from the URI path, then the auth source,
// then falls back to "test" like the mongo shell does.
func extractDBName(url string, opts *options.ClientOptions) string {
	if len(url) > 0 {
		parts := strings.Split(url, "/")
		if len(parts) > 3 {
			dbPart := parts[len(parts)-1]
			if idx := strings.Index(dbPart, "?"); idx >= 0 {
				dbPart = dbPart[:idx]
			}
			if dbPart != "" && dbPart != "admin" {
				return dbPart
			}
		}
	}

	if opts != nil && opts.Auth != nil && opts.Auth.AuthSource != "" && opts.Auth.AuthSource != "admin" {
		return opts.Auth.AuthSource
	}

	return "test"
}

// keyFilter keeps key field order so the filter matches the compound index.
func keyFilter(key types.Key) bson.D {
	filter := make(bson.D, 0, len(key))
	for _, f := range key {
		filter = append(filter, bson.E{Key: f.Name, Value: f.Value})
	}
	return filter
}

// withoutObjectID drops _id so replacements never try to rewrite it.
func withoutObjectID(doc types.Document) types.Document {
	if _, ok := doc["_id"]; !ok {
		return doc
	}
	out := doc.Clone()
	delete(out, "_id")
	return out
}

func toDocument(doc bson.M) types.Document {
	out := make(types.Document, len(doc))
	for k, v := range doc {
		out[k] = convertBSONValue(v)
	}
	return out
}

// convertBSONValue converts BSON values to standard Go types
func convertBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		result := make(map[string]interface{})
		for k, v := range val {
			result[k] = convertBSONValue(v)
		}
		return result
	case bson.A:
		result := make([]interface{}, len(val))
		for i, v := range val {
			result[i] = convertBSONValue(v)
		}
		return result
	case bson.D:
		result := make(map[string]interface{})
		for _, elem := range val {
			result[elem.Key] = convertBSONValue(elem.Value)
		}
		return result
	default:
		return v
	}
}
