package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"framecast/internal/jobstore"
)

// apiClient talks to the framecastd HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type renderResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
}

func (c *apiClient) Submit(payload []byte) (renderResponse, error) {
	var accepted renderResponse
	resp, err := c.http.Post(c.baseURL+"/render", "application/json", bytes.NewReader(payload))
	if err != nil {
		return accepted, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return accepted, apiError("submit", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return accepted, fmt.Errorf("decode submit response: %w", err)
	}
	return accepted, nil
}

func (c *apiClient) Status(jobID string) (jobstore.Document, error) {
	var doc jobstore.Document
	resp, err := c.http.Get(c.baseURL + "/status/" + jobID)
	if err != nil {
		return doc, fmt.Errorf("status: %w", err)
	}
	defer resp.Body.Close()

	// Unknown jobs still carry a decodable not_found document.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return doc, apiError("status", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode status response: %w", err)
	}
	return doc, nil
}

func (c *apiClient) Jobs() ([]jobstore.Document, error) {
	resp, err := c.http.Get(c.baseURL + "/jobs")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list jobs", resp)
	}
	var list struct {
		Jobs []jobstore.Document `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode jobs response: %w", err)
	}
	return list.Jobs, nil
}

// Fetch streams a finished artifact to w.
func (c *apiClient) Fetch(fileName string, w io.Writer) error {
	resp, err := c.http.Get(c.baseURL + "/result/" + fileName)
	if err != nil {
		return fmt.Errorf("fetch result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("fetch result", resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("stream result: %w", err)
	}
	return nil
}

func apiError(op string, resp *http.Response) error {
	var env struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&env); err == nil && env.Detail != "" {
		return fmt.Errorf("%s: %s (HTTP %d)", op, env.Detail, resp.StatusCode)
	}
	return fmt.Errorf("%s: HTTP %d", op, resp.StatusCode)
}
