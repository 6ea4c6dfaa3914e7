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


// Package search provides semantic passage retrieval over the talk corpus.
//
// The Retriever type implements a multi-stage retrieval algorithm:
//   - Embed the query and over-fetch nearest neighbors from the vector index
//   - Map candidate rows to passage records in the store
//   - Deduplicate by (talk, chunk) and cap entries per talk for breadth
//   - Truncate to the requested result count
//
// When the index, store, or embedding service is unavailable the
// retriever degrades to a fixed sample result rather than failing the
// request; the degraded state is visible through Degraded and the
// service-level status query.
package search
