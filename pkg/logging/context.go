package logging

import (
	"github.com/sirupsen/logrus"

	"heapstore/pkg/primitives"
)

// WithTx returns a logger entry carrying the transaction ID field.
func WithTx(tid primitives.TransactionID) *logrus.Entry {
	return GetLogger().WithField("tx_id", tid.ID())
}

// WithTable returns a logger entry carrying the table name field.
func WithTable(tableName string) *logrus.Entry {
	return GetLogger().WithField("table", tableName)
}

// WithPage returns a logger entry carrying the page identity fields.
func WithPage(pid primitives.PageID) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"table_id": pid.TableID().AsUint64(),
		"page_no":  pid.PageNo(),
	})
}
