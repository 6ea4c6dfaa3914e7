package core

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Passage records are
// written once by the ingestion pipeline and read for the lifetime of the
// corpus, so the format must stay stable across releases: fields are
// serialized in declaration order and new fields may only be appended.

// PassageMUS serializes Passage values.
var PassageMUS = passageMUS{}

// CorpusInfoMUS serializes CorpusInfo values.
var CorpusInfoMUS = corpusInfoMUS{}

// RowIDMUS serializes row identifiers stored in secondary index entries.
var RowIDMUS = rowIDMUS{}

type passageMUS struct{}

func (passageMUS) Marshal(p Passage, bs []byte) (n int) {
	n = varint.Uint64.Marshal(p.RowID, bs)
	n += ord.String.Marshal(p.TalkID, bs[n:])
	n += varint.Int.Marshal(p.ChunkIndex, bs[n:])
	n += ord.String.Marshal(p.Title, bs[n:])
	n += ord.String.Marshal(p.Recorded, bs[n:])
	n += ord.String.Marshal(p.Text, bs[n:])
	n += varint.Int.Marshal(p.TokenEstimate, bs[n:])
	n += ord.String.Marshal(p.Checksum, bs[n:])
	n += marshalVector(p.Vector, bs[n:])
	n += ord.String.Marshal(p.MediaID, bs[n:])
	n += raw.Float64.Marshal(p.StartSeconds, bs[n:])
	n += raw.Float64.Marshal(p.EndSeconds, bs[n:])
	n += ord.String.Marshal(p.StartLabel, bs[n:])
	n += ord.String.Marshal(p.EndLabel, bs[n:])
	return n
}

func (passageMUS) Unmarshal(bs []byte) (p Passage, n int, err error) {
	var m int
	if p.RowID, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	if p.TalkID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.ChunkIndex, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.Recorded, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.TokenEstimate, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.Checksum, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.Vector, m, err = unmarshalVector(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.MediaID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.StartSeconds, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.EndSeconds, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.StartLabel, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	if p.EndLabel, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + m, err
	}
	n += m
	return p, n, nil
}

func (passageMUS) Size(p Passage) (size int) {
	size = varint.Uint64.Size(p.RowID)
	size += ord.String.Size(p.TalkID)
	size += varint.Int.Size(p.ChunkIndex)
	size += ord.String.Size(p.Title)
	size += ord.String.Size(p.Recorded)
	size += ord.String.Size(p.Text)
	size += varint.Int.Size(p.TokenEstimate)
	size += ord.String.Size(p.Checksum)
	size += sizeVector(p.Vector)
	size += ord.String.Size(p.MediaID)
	size += raw.Float64.Size(p.StartSeconds)
	size += raw.Float64.Size(p.EndSeconds)
	size += ord.String.Size(p.StartLabel)
	size += ord.String.Size(p.EndLabel)
	return size
}

type corpusInfoMUS struct{}

func (corpusInfoMUS) Marshal(ci CorpusInfo, bs []byte) (n int) {
	n = varint.Int.Marshal(ci.Rows, bs)
	n += varint.Int.Marshal(ci.Dimension, bs[n:])
	n += ord.String.Marshal(ci.EmbeddingModel, bs[n:])
	n += ord.String.Marshal(ci.BuiltAt, bs[n:])
	return n
}

func (corpusInfoMUS) Unmarshal(bs []byte) (ci CorpusInfo, n int, err error) {
	var m int
	if ci.Rows, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if ci.Dimension, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return ci, n + m, err
	}
	n += m
	if ci.EmbeddingModel, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return ci, n + m, err
	}
	n += m
	if ci.BuiltAt, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return ci, n + m, err
	}
	n += m
	return ci, n, nil
}

func (corpusInfoMUS) Size(ci CorpusInfo) int {
	return varint.Int.Size(ci.Rows) +
		varint.Int.Size(ci.Dimension) +
		ord.String.Size(ci.EmbeddingModel) +
		ord.String.Size(ci.BuiltAt)
}

type rowIDMUS struct{}

func (rowIDMUS) Marshal(id uint64, bs []byte) int {
	return varint.Uint64.Marshal(id, bs)
}

func (rowIDMUS) Unmarshal(bs []byte) (uint64, int, error) {
	return varint.Uint64.Unmarshal(bs)
}

func (rowIDMUS) Size(id uint64) int {
	return varint.Uint64.Size(id)
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	if length < 0 || length > len(bs[n:]) {
		return nil, n, fmt.Errorf("invalid vector length %d", length)
	}
	v = make([]float32, length)
	var m int
	for i := range v {
		if v[i], m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n + m, err
		}
		n += m
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}
