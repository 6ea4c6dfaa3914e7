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


// Package core defines the domain model for the archivist engine.
//
// The central type is Passage: one indexed, citable chunk of a talk
// transcript, identified globally by a dense RowID and within its talk by
// (TalkID, ChunkIndex). The package also carries validation rules,
// content checksums, the timecode/media-link helpers shared by citation
// rendering, and the MUS serializers used by the storage layer.
//
// core has no dependencies on other archivist packages; everything else
// depends on it.
package core
