package table

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qvdkit/qvd/internal/options"
)

// DecoderConfig holds decoder settings applied through DecoderOptions.
type DecoderConfig struct {
	latin1 bool
}

// DecoderOption is a functional option for configuring a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithLatin1Strings decodes symbol strings as ISO 8859-1 instead of UTF-8.
// Use it for files from producers that stored single-byte text; in this mode
// no string payload is ever an encoding error.
func WithLatin1Strings() DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.latin1 = true
	})
}

// EncoderConfig holds encoder settings applied through EncoderOptions.
type EncoderConfig struct {
	tableName  string
	createTime time.Time
	creatorDoc string
}

// EncoderOption is a functional option for configuring an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// WithTableName sets the TableName written into the header. The default is
// "DATA"; file writers usually pass the output file's stem.
func WithTableName(name string) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if name == "" {
			return fmt.Errorf("table name must not be empty")
		}
		c.tableName = name

		return nil
	})
}

// WithCreateTime pins the CreateUtcTime header field. Without it the encoder
// stamps the wall clock, so pin it when byte-identical output matters.
func WithCreateTime(t time.Time) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.createTime = t
	})
}

// WithCreatorDoc pins the CreatorDoc header field to the given UUID. Without
// it the encoder generates a fresh one per file.
func WithCreatorDoc(id string) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("creator doc: %w", err)
		}
		c.creatorDoc = id

		return nil
	})
}
