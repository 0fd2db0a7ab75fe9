package redisearch

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/engine"
)

// unordered sorts documents without a sequencing key after every ordered one.
const unordered = math.MaxFloat64

// parseScored parses a WITHSCORES reply.
// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
func parseScored(raw []rueidis.RedisMessage) (hits []engine.Hit, total int) {
	if len(raw) == 0 {
		return nil, 0
	}
	n, err := raw[0].AsInt64()
	if err != nil || n == 0 {
		return nil, 0
	}

	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}
		hits = append(hits, newHit(key, score, parseFieldPairs(fieldMsgs)))
	}
	return hits, int(n)
}

// parsePlain parses a scoreless reply, assigning each hit the constant score.
// 2-stride: [total, key1, fields1, key2, fields2, ...]
func parsePlain(raw []rueidis.RedisMessage, constantScore float64) (hits []engine.Hit, total int) {
	if len(raw) == 0 {
		return nil, 0
	}
	n, err := raw[0].AsInt64()
	if err != nil || n == 0 {
		return nil, 0
	}

	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		hits = append(hits, newHit(key, constantScore, parseFieldPairs(fieldMsgs)))
	}
	return hits, int(n)
}

// parseKNN parses a KNN reply, converting the aliased cosine distance into a
// similarity in [0,1].
func parseKNN(raw []rueidis.RedisMessage) []engine.Hit {
	hits, _ := parsePlain(raw, 0)
	for i := range hits {
		if distStr, ok := hits[i].Fields[vectorScoreField]; ok {
			if dist, err := strconv.ParseFloat(distStr, 64); err == nil {
				hits[i].Score = math.Max(0, 1.0-dist)
			}
			delete(hits[i].Fields, vectorScoreField)
		}
	}
	return hits
}

func newHit(key string, score float64, fields map[string]string) engine.Hit {
	order := unordered
	if v, ok := fields[domain.OrderField]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			order = f
		}
	}
	return engine.Hit{ID: key, Score: score, Order: order, Fields: fields}
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
