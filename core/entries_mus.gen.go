// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	sliceKpl7jNy5WLEKv3aBpilpNgΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var EntryKindMUS = entryKindMUS{}

type entryKindMUS struct{}

func (s entryKindMUS) Marshal(v EntryKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s entryKindMUS) Unmarshal(bs []byte) (v EntryKind, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = EntryKind(tmp)
	return
}

func (s entryKindMUS) Size(v EntryKind) (size int) {
	return varint.Int.Size(int(v))
}

func (s entryKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var EntryMUS = entryMUS{}

type entryMUS struct{}

func (s entryMUS) Marshal(v Entry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += EntryKindMUS.Marshal(v.Kind, bs[n:])
	n += ord.String.Marshal(v.DocumentKey, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += sliceKpl7jNy5WLEKv3aBpilpNgΞΞ.Marshal(v.Vector, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s entryMUS) Unmarshal(bs []byte) (v Entry, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Kind, n1, err = EntryKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DocumentKey, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = sliceKpl7jNy5WLEKv3aBpilpNgΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s entryMUS) Size(v Entry) (size int) {
	size = IDMUS.Size(v.Id)
	size += EntryKindMUS.Size(v.Kind)
	size += ord.String.Size(v.DocumentKey)
	size += ord.String.Size(v.Text)
	size += sliceKpl7jNy5WLEKv3aBpilpNgΞΞ.Size(v.Vector)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s entryMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = EntryKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceKpl7jNy5WLEKv3aBpilpNgΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
