package replicatedkv

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphd/pkg/kvengine"
)

// wireOp is the JSON wire form of a kvengine.Op proposed as a raft log
// entry. Value is omitted (not merely empty) for a remove, distinguishing
// "delete this key" from "put the empty byte string".
type wireOp struct {
	Key    []byte `json:"key"`
	Value  []byte `json:"value,omitempty"`
	Remove bool   `json:"remove,omitempty"`
}

func encodeOps(ops []kvengine.Op) ([]byte, error) {
	wire := make([]wireOp, len(ops))
	for i, op := range ops {
		wire[i] = wireOp{Key: op.Key, Value: op.Value, Remove: op.IsRemove()}
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("replicatedkv: encode batch: %w", err)
	}
	return data, nil
}

func decodeOps(data []byte) ([]kvengine.Op, error) {
	var wire []wireOp
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("replicatedkv: decode batch: %w", err)
	}
	ops := make([]kvengine.Op, len(wire))
	for i, w := range wire {
		if w.Remove {
			ops[i] = kvengine.Op{Key: w.Key, Value: nil}
		} else {
			ops[i] = kvengine.Op{Key: w.Key, Value: w.Value}
		}
	}
	return ops, nil
}
