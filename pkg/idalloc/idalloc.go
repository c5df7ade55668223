package idalloc

import "sort"

// Next 返回不在used中的最小非负整数
//
// 删除记录后留下的空位会被复用，使ID保持紧凑。该计算本身不具备并发隔离，
// 调用方需要在存储层原子占位（例如SETNX）。
func Next(used []int) int {
	ids := make([]int, 0, len(used))
	seen := make(map[int]struct{}, len(used))
	for _, id := range used {
		if id < 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	// 与序列0,1,2...逐一比较，第一个不一致的位置就是空位
	for expected, id := range ids {
		if id != expected {
			return expected
		}
	}
	return len(ids)
}
