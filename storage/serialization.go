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


package storage

import (
	"github.com/poiesic/archivist/core"
)

// MarshalRowID serializes a row id to bytes.
func MarshalRowID(row uint64) []byte {
	buf := make([]byte, core.RowIDMUS.Size(row))
	core.RowIDMUS.Marshal(row, buf)
	return buf
}

// UnmarshalRowID deserializes a row id from bytes.
func UnmarshalRowID(data []byte) (uint64, error) {
	row, _, err := core.RowIDMUS.Unmarshal(data)
	return row, err
}

// MarshalPassage serializes a Passage to bytes.
func MarshalPassage(passage *core.Passage) []byte {
	buf := make([]byte, core.PassageMUS.Size(*passage))
	core.PassageMUS.Marshal(*passage, buf)
	return buf
}

// UnmarshalPassage deserializes a Passage from bytes.
func UnmarshalPassage(data []byte) (*core.Passage, error) {
	passage, _, err := core.PassageMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &passage, nil
}

// MarshalCorpusInfo serializes a CorpusInfo to bytes.
func MarshalCorpusInfo(info *core.CorpusInfo) []byte {
	buf := make([]byte, core.CorpusInfoMUS.Size(*info))
	core.CorpusInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalCorpusInfo deserializes a CorpusInfo from bytes.
func UnmarshalCorpusInfo(data []byte) (*core.CorpusInfo, error) {
	info, _, err := core.CorpusInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
