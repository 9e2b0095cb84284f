package main

import (
	"context"
	"errors"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
)

type unavailableGateway struct{}

func (unavailableGateway) Invoke(context.Context, []chat.Message, string) (string, error) {
	return "", errors.New("model not initialized")
}
