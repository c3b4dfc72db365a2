package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/adforge/pkg/buildinfo"
	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/export"
	"github.com/matzehuels/adforge/pkg/pipeline"
)

type healthBody struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	specs := s.runner.Channels.All()
	if cat := r.URL.Query().Get("category"); cat != "" {
		filtered := specs[:0:0]
		for _, spec := range specs {
			if string(spec.Category) == cat {
				filtered = append(filtered, spec)
			}
		}
		specs = filtered
	}
	if specs == nil {
		specs = []channel.Spec{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": specs})
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"presets": s.runner.Presets.All()})
}

func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := s.decode(w, r, s.schemas.layouts, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type exportRequest struct {
	Layout  *creative.LayoutVariation `json:"layout"`
	Config  *export.Config            `json:"config,omitempty"`
	Preset  string                    `json:"preset,omitempty"`
	Channel string                    `json:"channel,omitempty"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := s.decode(w, r, s.schemas.export, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var res export.Result
	if req.Config != nil {
		res = s.runner.Export(r.Context(), req.Layout, *req.Config)
	} else {
		var err error
		res, err = s.runner.ExportPreset(r.Context(), req.Layout, req.Preset, req.Channel)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	status := http.StatusOK
	if !res.Success {
		status = errors.HTTPStatus(res.Err)
	}
	writeJSON(w, status, res)
}

type batchRequest struct {
	Layout  *creative.LayoutVariation `json:"layout"`
	Configs []export.Config           `json:"configs"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, s.schemas.batch, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.runner.ExportFormats(r.Context(), req.Layout, req.Configs))
}

type projectRequest struct {
	Layouts []*creative.LayoutVariation `json:"layouts"`
	Options export.ProjectOptions       `json:"options"`
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := s.decode(w, r, s.schemas.project, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Options.Quality != "" && !req.Options.Quality.Valid() {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidExportConfig, "unknown quality %q", req.Options.Quality))
		return
	}
	writeJSON(w, http.StatusOK, s.runner.ExportProject(r.Context(), req.Layouts, req.Options))
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateArtifactID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, ref, err := s.runner.Renderer.Store().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", ref.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ref.Name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
