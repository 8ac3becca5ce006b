// Copyright 2026 Poiesic Systems
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

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/storage"
)

// Handlers serves the queue and collection APIs backed by a job store.
type Handlers struct {
	jobs        storage.JobStore
	collections storage.CollectionStore
	logger      *slog.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(jobs storage.JobStore, collections storage.CollectionStore) *Handlers {
	return &Handlers{
		jobs:        jobs,
		collections: collections,
		logger:      slog.Default().With("component", "api"),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// EnqueueRequest is the submission payload. The collection field is named
// db on the wire for compatibility with existing clients.
type EnqueueRequest struct {
	Collection string   `json:"db"`
	Files      []string `json:"files"`
}

func (h *Handlers) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.jobs.Enqueue(r.Context(), req.Collection, req.Files)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handlers) ListPending(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListPending(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handlers) ClaimJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Claim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// TransitionRequest moves a job to a new status, optionally attaching the
// terminal result.
type TransitionRequest struct {
	Status core.JobStatus  `json:"status"`
	Result *core.JobResult `json:"result,omitempty"`
}

func (h *Handlers) TransitionJob(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.jobs.Transition(r.Context(), chi.URLParam(r, "id"), req.Status, req.Result)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// RequeueRequest sweeps processing jobs whose claim is older than the given
// age back to pending.
type RequeueRequest struct {
	AgeSeconds int `json:"age_seconds"`
}

// RequeueResponse lists the jobs returned to the queue.
type RequeueResponse struct {
	Requeued []string `json:"requeued"`
}

func (h *Handlers) RequeueStale(w http.ResponseWriter, r *http.Request) {
	var req RequeueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AgeSeconds < 0 {
		writeError(w, http.StatusBadRequest, "age_seconds must not be negative")
		return
	}

	ids, err := h.jobs.RequeueStale(r.Context(), time.Duration(req.AgeSeconds)*time.Second)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, RequeueResponse{Requeued: ids})
}

// CollectionRequest names a collection to create.
type CollectionRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.collections.CreateCollection(r.Context(), req.Name); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (h *Handlers) ListCollections(w http.ResponseWriter, r *http.Request) {
	names, err := h.collections.ListCollections(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// writeStoreError maps store sentinel errors onto HTTP status codes.
func (h *Handlers) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidTransition),
		errors.Is(err, storage.ErrAlreadyClaimed),
		errors.Is(err, storage.ErrCollectionExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrNoFiles),
		errors.Is(err, core.ErrEmptyCollection),
		errors.Is(err, core.ErrEmptyFilename),
		errors.Is(err, core.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("store error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
