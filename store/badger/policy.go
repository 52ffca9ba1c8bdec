// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/store"
)

// PolicyRepository persists PolicyRecord display metadata alongside
// the chunk store, sharing the same Backend. It is an external CRUD
// surface over the database a deployment uses to list and label
// policies; the guardrail's reasoning never reads from it.
type PolicyRepository struct {
	backend *Backend
}

// NewPolicyRepository creates a PolicyRepository over backend.
func NewPolicyRepository(backend *Backend) *PolicyRepository {
	return &PolicyRepository{backend: backend}
}

// Put inserts or overwrites the display record for rec.PolicyID.
func (r *PolicyRepository) Put(rec *core.PolicyRecord) error {
	data, err := store.MarshalPolicyRecord(rec)
	if err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badgerdb.Txn) error {
		return tx.Set(makePolicyRecordKey(rec.PolicyID), data)
	}, true)
}

// Get fetches the display record for policyID.
func (r *PolicyRepository) Get(policyID string) (*core.PolicyRecord, error) {
	var result *core.PolicyRecord
	err := r.backend.WithTx(func(tx *badgerdb.Txn) error {
		item, err := tx.Get(makePolicyRecordKey(policyID))
		if err == badgerdb.ErrKeyNotFound {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = store.UnmarshalPolicyRecord(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the display record for policyID, if any.
func (r *PolicyRepository) Delete(policyID string) error {
	return r.backend.WithTx(func(tx *badgerdb.Txn) error {
		err := tx.Delete(makePolicyRecordKey(policyID))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		return err
	}, true)
}

// List returns every stored display record, in no particular order.
func (r *PolicyRepository) List() ([]*core.PolicyRecord, error) {
	var results []*core.PolicyRecord
	err := r.backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(policyRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				rec, err := store.UnmarshalPolicyRecord(val)
				if err != nil {
					return err
				}
				results = append(results, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}
