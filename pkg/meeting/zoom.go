package meeting

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	tokenURL      = "https://zoom.us/oauth/token"
	meetingsURL   = "https://api.zoom.us/v2/users/me/meetings"
	scheduledType = 2
)

// Service creates video meetings for appointments.
type Service interface {
	CreateMeeting(ctx context.Context, req *CreateMeetingRequest) (*Meeting, error)
}

type CreateMeetingRequest struct {
	Topic     string
	StartTime time.Time
	Duration  int
	Timezone  string
}

type Meeting struct {
	JoinURL   string `json:"join_url"`
	MeetingID int64  `json:"meeting_id"`
	Password  string `json:"password"`
	StartURL  string `json:"start_url"`
}

type Config struct {
	AccountID    string `mapstructure:"account_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type ZoomService struct {
	cfg    Config
	client *http.Client

	// Overridable for tests.
	tokenEndpoint   string
	meetingEndpoint string
}

func NewZoomService(cfg Config) *ZoomService {
	return &ZoomService{
		cfg:             cfg,
		client:          &http.Client{Timeout: 15 * time.Second},
		tokenEndpoint:   tokenURL,
		meetingEndpoint: meetingsURL,
	}
}

// getAccessToken performs the server-to-server OAuth exchange.
func (z *ZoomService) getAccessToken(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s?grant_type=account_credentials&account_id=%s",
		z.tokenEndpoint, url.QueryEscape(z.cfg.AccountID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}

	basic := base64.StdEncoding.EncodeToString([]byte(z.cfg.ClientID + ":" + z.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := z.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate with Zoom: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zoom token endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode Zoom token response: %w", err)
	}
	return body.AccessToken, nil
}

func (z *ZoomService) CreateMeeting(ctx context.Context, req *CreateMeetingRequest) (*Meeting, error) {
	token, err := z.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	duration := req.Duration
	if duration <= 0 {
		duration = 30
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	payload := map[string]interface{}{
		"topic":      req.Topic,
		"type":       scheduledType,
		"start_time": req.StartTime.UTC().Format(time.RFC3339),
		"duration":   duration,
		"timezone":   timezone,
		"settings": map[string]interface{}{
			"waiting_room":      true,
			"join_before_host":  false,
			"host_video":        true,
			"participant_video": true,
			"mute_upon_entry":   true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, z.meetingEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := z.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zoom meeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zoom meetings endpoint returned %d", resp.StatusCode)
	}

	var meeting struct {
		ID       int64  `json:"id"`
		JoinURL  string `json:"join_url"`
		Password string `json:"password"`
		StartURL string `json:"start_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, fmt.Errorf("failed to decode Zoom meeting response: %w", err)
	}

	return &Meeting{
		JoinURL:   meeting.JoinURL,
		MeetingID: meeting.ID,
		Password:  meeting.Password,
		StartURL:  meeting.StartURL,
	}, nil
}
