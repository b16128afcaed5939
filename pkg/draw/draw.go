// Package draw 转盘抽取逻辑
// 纯函数实现，随机源由调用方注入以便测试
package draw

import (
	"errors"
	"math/rand"

	"mabar/app/models/place"
)

// ErrEmptyCandidates 候选集为空，调用方应提示扩大半径或放宽分类
var ErrEmptyCandidates = errors.New("empty candidate set")

// Pick 从候选商家中等概率抽取一个
// 候选集为空时返回 ErrEmptyCandidates，不会返回零值商家
func Pick(candidates []place.Place, r *rand.Rand) (place.Place, error) {
	if len(candidates) == 0 {
		return place.Place{}, ErrEmptyCandidates
	}
	return candidates[r.Intn(len(candidates))], nil
}
