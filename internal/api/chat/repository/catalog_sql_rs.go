package chatRepository

import (
	contextPkg "TemanCerita/pkg/context"
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type IntentTemplateDB struct {
	Tag      sql.NullString `db:"tag"`
	Kind     sql.NullString `db:"kind"`
	Pool     sql.NullInt64  `db:"pool"`
	Position sql.NullInt64  `db:"position"`
	Template sql.NullString `db:"template"`
}

type IntentTopicDB struct {
	Tag   sql.NullString `db:"tag"`
	Topic sql.NullString `db:"topic"`
}

type IntentKeywordDB struct {
	Tag     sql.NullString `db:"tag"`
	Keyword sql.NullString `db:"keyword"`
}

type sqlCatalogReader struct {
	q   SQLExecutor
	log *logrus.Logger
}

// NewSQLCatalogReader reads templates from the intent_templates table. Rows
// with pool > 0 belong to nested pools and are represented as extra inner
// lists so normalization treats them exactly like file sources.
func NewSQLCatalogReader(db *sqlx.DB, log *logrus.Logger) CatalogReader {
	return &sqlCatalogReader{q: db, log: log}
}

func (r *sqlCatalogReader) ReadCatalog(ctx context.Context) (*CatalogDocument, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetIntentTemplates, map[string]interface{}{
		"is_active": true,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReadCatalog named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []IntentTemplateDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReadCatalog templates execution err")
		return nil, err
	}

	doc := &CatalogDocument{
		Responses: make(map[string]interface{}),
		Tips:      make(map[string]interface{}),
		Declines:  make(map[string]interface{}),
		Keywords:  make(map[string][]string),
		Topics:    make(map[string]string),
	}

	pools := map[string]map[string][][]string{
		templateKindResponse: {},
		templateKindTip:      {},
		templateKindDecline:  {},
	}
	for _, row := range rows {
		table, ok := pools[row.Kind.String]
		if !ok || !row.Tag.Valid || !row.Template.Valid {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"tag":        row.Tag.String,
				"kind":       row.Kind.String,
			}).Warn("Skipping malformed intent template row")
			continue
		}

		idx := int(row.Pool.Int64)
		if idx < 0 {
			return nil, fmt.Errorf("intent template %s/%s has negative pool index", row.Tag.String, row.Kind.String)
		}
		for len(table[row.Tag.String]) <= idx {
			table[row.Tag.String] = append(table[row.Tag.String], nil)
		}
		table[row.Tag.String][idx] = append(table[row.Tag.String][idx], row.Template.String)
	}

	fill := func(dst map[string]interface{}, src map[string][][]string) {
		for tag, nested := range src {
			if len(nested) == 1 {
				dst[tag] = toInterfaces(nested[0])
				continue
			}
			outer := make([]interface{}, 0, len(nested))
			for _, inner := range nested {
				outer = append(outer, toInterfaces(inner))
			}
			dst[tag] = outer
		}
	}
	fill(doc.Responses, pools[templateKindResponse])
	fill(doc.Tips, pools[templateKindTip])
	fill(doc.Declines, pools[templateKindDecline])

	var topics []IntentTopicDB
	if err := r.q.SelectContext(ctx, &topics, queryGetIntentTopics); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReadCatalog topics execution err")
		return nil, err
	}
	for _, t := range topics {
		if t.Tag.Valid && t.Topic.Valid {
			doc.Topics[t.Tag.String] = t.Topic.String
		}
	}

	var keywords []IntentKeywordDB
	if err := r.q.SelectContext(ctx, &keywords, queryGetIntentKeywords); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReadCatalog keywords execution err")
		return nil, err
	}
	for _, k := range keywords {
		if k.Tag.Valid && k.Keyword.Valid {
			doc.Keywords[k.Tag.String] = append(doc.Keywords[k.Tag.String], k.Keyword.String)
		}
	}

	r.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"templates":  len(rows),
		"topics":     len(doc.Topics),
	}).Info("Loaded intent templates from database")

	return doc, nil
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
