package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var errEmptyBody = errors.New("request body is empty")

// bindPayload decodes a JSON body that is either the bare object or the
// object wrapped under key, e.g. {"payment": {...}}. gin caches the body, so
// probing for the envelope does not consume it.
func bindPayload(c *gin.Context, key string, obj any) error {
	if c.Request.Body == nil {
		return errEmptyBody
	}

	var envelope map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&envelope, binding.JSON); err != nil {
		// Not an object; the flat decode reports why
		return c.ShouldBindBodyWith(obj, binding.JSON)
	}

	inner, wrapped := envelope[key]
	if !wrapped {
		return c.ShouldBindBodyWith(obj, binding.JSON)
	}
	if string(inner) == "null" {
		return errors.New(key + " must be an object")
	}
	if err := json.Unmarshal(inner, obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
