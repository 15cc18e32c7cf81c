package webhook

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

const (
	NoIdea            = "No startup idea generated"
	NoRecommendations = "No recommendations available"
)

var (
	ideaKeys           = []string{"startupIdea", "idea", "content", "response"}
	recommendationKeys = []string{"recommendations", "advice", "details"}
)

// Normalize turns a decoded webhook answer into an Idea. The answer may be plain text,
// a JSON document encoded as a string, a two element array or an object using one of
// several key spellings.
func Normalize(data interface{}) (*model.Idea, error) {
	if !truthy(data) {
		return nil, errors.New(errors.ErrUpstream, "Empty response received")
	}

	if text, ok := data.(string); ok {
		var parsed interface{}
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return &model.Idea{StartupIdea: text, Recommendations: NoRecommendations}, nil
		}
		data = parsed
	}

	switch v := data.(type) {
	case []interface{}:
		idea := model.Idea{Recommendations: NoRecommendations}
		if len(v) > 0 && truthy(v[0]) {
			idea.StartupIdea = stringify(v[0])
		}
		if len(v) > 1 && truthy(v[1]) {
			idea.Recommendations = stringify(v[1])
		}
		return &idea, nil

	case map[string]interface{}:
		idea := firstTruthy(v, ideaKeys)
		recommendations := firstTruthy(v, recommendationKeys)
		if idea == "" && recommendations == "" {
			return nil, errors.New(errors.ErrUpstream, "Invalid response format")
		}
		if idea == "" {
			idea = NoIdea
		}
		if recommendations == "" {
			recommendations = NoRecommendations
		}
		return &model.Idea{StartupIdea: idea, Recommendations: recommendations}, nil
	}

	return nil, errors.New(errors.ErrUpstream, "Invalid response format")
}

func firstTruthy(obj map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok && truthy(v) {
			return stringify(v)
		}
	}
	return ""
}

// truthy follows the loose notion of emptiness webhook authors tend to rely on:
// null, false, 0 and "" count as absent.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			if e != nil {
				parts[i] = stringify(e)
			}
		}
		return strings.Join(parts, ",")
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
