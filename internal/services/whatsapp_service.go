package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"salesor-api/config"
)

// WhatsAppSender delivers outreach messages to a lead's WhatsApp number.
type WhatsAppSender interface {
	Send(phone, message string) error
}

// NewWhatsAppSender returns a Cloud API client, or a console-logging stand-in
// when the access token or phone id is not configured.
func NewWhatsAppSender(cfg *config.Config) WhatsAppSender {
	if cfg.WhatsAppToken == "" || cfg.WhatsAppPhoneID == "" {
		log.Println("WhatsApp credentials not configured, falling back to console logging for messages")
		return &ConsoleWhatsAppSender{}
	}
	return &CloudAPIWhatsAppSender{
		accessToken: cfg.WhatsAppToken,
		phoneID:     cfg.WhatsAppPhoneID,
		baseURL:     "https://graph.facebook.com/v18.0",
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CloudAPIWhatsAppSender sends text messages through the WhatsApp Cloud API.
type CloudAPIWhatsAppSender struct {
	accessToken string
	phoneID     string
	baseURL     string
	client      *http.Client
}

func (s *CloudAPIWhatsAppSender) Send(phone, message string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                phone,
		"type":              "text",
		"text": map[string]string{
			"body": message,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp api error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// ConsoleWhatsAppSender logs messages instead of sending them.
type ConsoleWhatsAppSender struct{}

func (s *ConsoleWhatsAppSender) Send(phone, message string) error {
	log.Printf("[MOCK WHATSAPP] To: %s | Message: %s", phone, message)
	return nil
}
