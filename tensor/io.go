// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensoralg/internal/serialization"
)

// Record is one named tensor in a .talg file.
type Record = serialization.Record

// RecordOf encodes t under name.
func RecordOf[T Scalar](name string, t *Tensor[T]) Record {
	return serialization.RecordOf(name, t)
}

// TensorOf decodes a record. The record's data type must be T's.
func TensorOf[T Scalar](r Record) (*Tensor[T], error) {
	return serialization.TensorOf[T](r)
}

// WriteFile writes records to path in .talg format.
//
// Example:
//
//	err := tensor.WriteFile("out.talg", nil, tensor.RecordOf("g", g))
func WriteFile(path string, metadata map[string]string, records ...Record) error {
	w, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteTensors(records, metadata); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// ReadFile reads and validates the .talg file at path and returns its
// records in file order.
func ReadFile(path string) ([]Record, error) {
	r, err := serialization.Open(path)
	if err != nil {
		return nil, err
	}
	return r.Records(), nil
}
