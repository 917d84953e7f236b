package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/models"
)

// 快照结构版本
const (
	CartSnapshotVersion  = 1
	DraftSnapshotVersion = 1
)

// snapshotEnvelope 会话快照外层结构
type snapshotEnvelope struct {
	Version int             `json:"version"`
	SavedAt int64           `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// legacyCartItem 旧版本地存储中的购物车行（无版本号，扁平字段）
type legacyCartItem struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Price     models.Money `json:"price"`
	Quantity  int          `json:"quantity"`
	ImageURL  string       `json:"imageUrl"`
	Variant   string       `json:"variant"`
	Form      string       `json:"form"`
	Grind     string       `json:"grind"`
}

func encodeSnapshot(version int, savedAt time.Time, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snapshotEnvelope{
		Version: version,
		SavedAt: savedAt.Unix(),
		Data:    raw,
	})
}

// decodeEnvelope 解析快照外层；无 version/data 字段时视为旧版（version 0）
func decodeEnvelope(payload []byte) (snapshotEnvelope, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return snapshotEnvelope{}, ErrSnapshotCorrupted
	}
	if strings.HasPrefix(trimmed, "{") {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
			return snapshotEnvelope{}, fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
		}
		_, hasVersion := envelope["version"]
		_, hasData := envelope["data"]
		if hasVersion && hasData {
			var env snapshotEnvelope
			if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
				return snapshotEnvelope{}, fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
			}
			return env, nil
		}
	} else if !strings.HasPrefix(trimmed, "[") {
		return snapshotEnvelope{}, ErrSnapshotCorrupted
	}
	return snapshotEnvelope{Version: 0, Data: json.RawMessage(trimmed)}, nil
}

// encodeCartSnapshot 序列化购物车
func encodeCartSnapshot(lines []models.CartLine, savedAt time.Time) ([]byte, error) {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return encodeSnapshot(CartSnapshotVersion, savedAt, lines)
}

// decodeCartSnapshot 反序列化购物车，兼容旧版扁平数组
func decodeCartSnapshot(payload []byte) ([]models.CartLine, error) {
	env, err := decodeEnvelope(payload)
	if err != nil {
		return nil, err
	}
	switch env.Version {
	case 0:
		return migrateLegacyCart(env.Data)
	case CartSnapshotVersion:
		var lines []models.CartLine
		if err := json.Unmarshal(env.Data, &lines); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
		}
		kept := lines[:0]
		for _, line := range lines {
			if line.Quantity < 1 || line.Packaging.Validate() != nil {
				continue
			}
			line.Quantity = min(line.Quantity, maxLineQuantity)
			kept = append(kept, line)
		}
		return kept, nil
	default:
		return nil, fmt.Errorf("%w: unsupported cart version %d", ErrSnapshotCorrupted, env.Version)
	}
}

func migrateLegacyCart(data json.RawMessage) ([]models.CartLine, error) {
	var legacy []legacyCartItem
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
	}
	lines := make([]models.CartLine, 0, len(legacy))
	for _, item := range legacy {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity < 1 {
			continue
		}
		lines = append(lines, models.CartLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  min(item.Quantity, maxLineQuantity),
			ImageURL:  item.ImageURL,
			Packaging: legacyPackaging(item),
		})
	}
	return lines, nil
}

// legacyPackaging 旧版规格推断：濾掛/掛耳视为濾掛包，其余为散装，缺省型态为咖啡豆
func legacyPackaging(item legacyCartItem) models.Packaging {
	if models.IsDripBagVariant(item.Variant) {
		return models.DripBagPackaging(item.Variant)
	}
	form := strings.TrimSpace(item.Form)
	if form != constants.FormGround {
		form = constants.FormWholeBean
	}
	grind := strings.TrimSpace(item.Grind)
	if form == constants.FormGround && grind == "" {
		grind = constants.DefaultGrind
	}
	return models.BulkPackaging(item.Variant, form, grind)
}

// encodeDraftSnapshot 序列化结帐草稿
func encodeDraftSnapshot(draft models.CheckoutDraft, savedAt time.Time) ([]byte, error) {
	return encodeSnapshot(DraftSnapshotVersion, savedAt, draft)
}

// decodeDraftSnapshot 反序列化结帐草稿，返回保存时间（旧版为零值）
func decodeDraftSnapshot(payload []byte) (models.CheckoutDraft, time.Time, error) {
	env, err := decodeEnvelope(payload)
	if err != nil {
		return models.CheckoutDraft{}, time.Time{}, err
	}
	if env.Version > DraftSnapshotVersion {
		return models.CheckoutDraft{}, time.Time{}, fmt.Errorf("%w: unsupported draft version %d", ErrSnapshotCorrupted, env.Version)
	}
	var draft models.CheckoutDraft
	if err := json.Unmarshal(env.Data, &draft); err != nil {
		return models.CheckoutDraft{}, time.Time{}, fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
	}
	var savedAt time.Time
	if env.SavedAt > 0 {
		savedAt = time.Unix(env.SavedAt, 0)
	}
	return draft, savedAt, nil
}
