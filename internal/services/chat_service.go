package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"salesor-api/internal/models"
)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// ChatService answers natural-language questions about the caller's CRM data.
type ChatService interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

// GroqChatService implements ChatService against Groq's OpenAI-compatible
// chat completions API, feeding it a summary of the user's leads as context.
type GroqChatService struct {
	leads  LeadSource
	apiKey string
	model  string
	client *http.Client
}

func NewChatService(leads LeadSource, apiKey, model string) ChatService {
	return &GroqChatService{
		leads:  leads,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *GroqChatService) Reply(ctx context.Context, userID, message string) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("chat assistant is not configured")
	}

	leads, err := s.leads.FindAllByOwner(ctx, userID)
	if err != nil {
		return "", err
	}

	return s.callGroq(ctx, buildChatContext(leads), message)
}

// buildChatContext summarizes a user's leads into the prompt context: totals,
// per-status counts, and the top 10 leads by value.
func buildChatContext(leads []*models.Lead) string {
	totalValue := 0.0
	wonLeads := 0
	statusCounts := map[string]int{}
	for _, lead := range leads {
		totalValue += lead.Value
		if lead.Status == models.StatusWon {
			wonLeads++
		}
		statusCounts[lead.Status]++
	}

	byValue := make([]*models.Lead, len(leads))
	copy(byValue, leads)
	sort.SliceStable(byValue, func(i, j int) bool {
		return byValue[i].Value > byValue[j].Value
	})
	if len(byValue) > 10 {
		byValue = byValue[:10]
	}

	breakdown, _ := json.Marshal(statusCounts)

	var sb strings.Builder
	fmt.Fprintf(&sb, "User CRM Data Summary:\n")
	fmt.Fprintf(&sb, "- Total Leads: %d\n", len(leads))
	fmt.Fprintf(&sb, "- Total Potential Revenue: %.2f\n", totalValue)
	fmt.Fprintf(&sb, "- Closed/Won Deals: %d\n", wonLeads)
	fmt.Fprintf(&sb, "- Status Breakdown: %s\n\n", breakdown)
	fmt.Fprintf(&sb, "Current Leads Detail (Top 10 by value):\n")
	for _, lead := range byValue {
		fmt.Fprintf(&sb, "- %s: %.2f (%s)\n", lead.Name, lead.Value, lead.Status)
	}
	return sb.String()
}

func (s *GroqChatService) callGroq(ctx context.Context, crmContext, message string) (string, error) {
	type chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	system := "You are Salesor AI, a smart assistant for a CRM platform. " +
		"Use the provided context to answer the user's questions concisely and professionally. " +
		"If the user asks about their performance or leads, use the data provided.\n\n" +
		"FORMATTING RULES:\n" +
		"1. NEVER use asterisks (*) for bullet points or emphasis.\n" +
		"2. Use numbered lists (1., 2.) or simple dashes (-) for lists.\n" +
		"3. Use clear line breaks between points.\n" +
		"4. Do not use markdown bolding (which uses **).\n" +
		"5. Keep the response organized and easy to read.\n\n" +
		"Context: " + crmContext

	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: message},
		},
		"temperature": 0.7,
		"max_tokens":  1024,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqEndpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("groq api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
