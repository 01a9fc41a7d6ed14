package ops

import (
	"context"
	"fmt"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

func registerColorOps(r *Registry) {
	r.register("get_node_list", opGetNodeList)
	r.register("get_current_node_index", opGetCurrentNodeIndex)
	r.register("set_current_node_index", opSetCurrentNodeIndex)
	r.register("add_serial_node", opAddSerialNode)
	r.register("add_parallel_node", opAddParallelNode)
	r.register("add_layer_node", opAddLayerNode)
	r.register("delete_current_node", opDeleteCurrentNode)
	r.register("reset_current_node", opResetCurrentNode)
	r.register("get_primary_correction", opGetPrimaryCorrection)
	r.register("set_primary_correction", opSetPrimaryCorrection)
	r.register("set_node_label", opSetNodeLabel)
	r.register("set_node_color", opSetNodeColor)
	r.register("apply_lut", opApplyLUT)
}

// currentNodeGraph reaches the grading graph of the clip under the
// playhead. Most grading calls only work with the color page open.
func currentNodeGraph(ctx context.Context, d *Deps) (*resolve.NodeGraph, func(), error) {
	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	item, err := tl.CurrentVideoItem(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	graph, err := item.NodeGraph(ctx)
	if err != nil {
		item.Release(ctx)
		cleanup()
		return nil, nil, err
	}
	release := func() {
		graph.Release(ctx)
		item.Release(ctx)
		cleanup()
	}
	return graph, release, nil
}

func opGetNodeList(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	count, err := graph.NumNodes(ctx)
	if err != nil {
		return nil, err
	}
	type nodeEntry struct {
		Index int    `json:"index"`
		Label string `json:"label"`
	}
	nodes := make([]nodeEntry, 0, count)
	for i := 1; i <= count; i++ {
		label, _ := graph.NodeLabel(ctx, i)
		nodes = append(nodes, nodeEntry{Index: i, Label: label})
	}
	return map[string]any{"nodes": nodes, "count": count}, nil
}

func opGetCurrentNodeIndex(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	index, err := graph.CurrentNode(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"index": index}, nil
}

func opSetCurrentNodeIndex(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_current_node_index"
	index, err := intParam(data, "index")
	if err != nil {
		return nil, err
	}
	if index < 1 {
		return nil, errors.Validation(op, "index must be 1 or greater")
	}

	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := graph.SetCurrentNode(ctx, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetCurrentNode(%d) returned false; node may not exist", index))
	}
	return map[string]any{"index": index}, nil
}

// nodeAddOp wraps the three add variants, which differ only in the
// vendor call.
func nodeAddOp(opName string, add func(*resolve.NodeGraph, context.Context) (bool, error)) Handler {
	return func(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
		graph, cleanup, err := currentNodeGraph(ctx, d)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		ok, err := add(graph, ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Vendor(opName, "node could not be added")
		}
		index, err := graph.CurrentNode(ctx)
		if err != nil {
			return map[string]any{"added": true}, nil
		}
		return map[string]any{"added": true, "index": index}, nil
	}
}

var (
	opAddSerialNode = nodeAddOp("ops.add_serial_node", func(g *resolve.NodeGraph, ctx context.Context) (bool, error) {
		return g.AddSerialNode(ctx)
	})
	opAddParallelNode = nodeAddOp("ops.add_parallel_node", func(g *resolve.NodeGraph, ctx context.Context) (bool, error) {
		return g.AddParallelNode(ctx)
	})
	opAddLayerNode = nodeAddOp("ops.add_layer_node", func(g *resolve.NodeGraph, ctx context.Context) (bool, error) {
		return g.AddLayerNode(ctx)
	})
)

func opDeleteCurrentNode(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	const op = "ops.delete_current_node"
	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := graph.DeleteCurrentNode(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, "DeleteCurrentNode returned false")
	}
	return map[string]any{"deleted": true}, nil
}

func opResetCurrentNode(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	const op = "ops.reset_current_node"
	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := graph.ResetCurrentNode(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, "ResetCurrentNode returned false")
	}
	return map[string]any{"reset": true}, nil
}

func nodeIndexParam(ctx context.Context, graph *resolve.NodeGraph, data map[string]any) (int, error) {
	index, err := optionalInt(data, "index", 0)
	if err != nil {
		return 0, err
	}
	if index == 0 {
		return graph.CurrentNode(ctx)
	}
	if index < 0 {
		return 0, errors.Validation("ops.params", "index must be 1 or greater")
	}
	return index, nil
}

func opGetPrimaryCorrection(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	index, err := nodeIndexParam(ctx, graph, data)
	if err != nil {
		return nil, err
	}
	params, err := graph.PrimaryCorrection(ctx, index)
	if err != nil {
		return nil, err
	}
	return map[string]any{"index": index, "correction": params}, nil
}

func opSetPrimaryCorrection(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_primary_correction"
	params, err := mapParam(data, "correction")
	if err != nil {
		return nil, err
	}

	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	index, err := nodeIndexParam(ctx, graph, data)
	if err != nil {
		return nil, err
	}
	ok, err := graph.SetPrimaryCorrection(ctx, index, params)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetPrimaryCorrection(%d) returned false", index))
	}
	return map[string]any{"set": true, "index": index}, nil
}

func opSetNodeLabel(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_node_label"
	label, err := stringParam(data, "label")
	if err != nil {
		return nil, err
	}

	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	index, err := nodeIndexParam(ctx, graph, data)
	if err != nil {
		return nil, err
	}
	ok, err := graph.SetNodeLabel(ctx, index, label)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetNodeLabel(%d) returned false", index))
	}
	return map[string]any{"set": true, "index": index, "label": label}, nil
}

func opSetNodeColor(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_node_color"
	red, err := optionalFloat(data, "red", 0)
	if err != nil {
		return nil, err
	}
	green, err := optionalFloat(data, "green", 0)
	if err != nil {
		return nil, err
	}
	blue, err := optionalFloat(data, "blue", 0)
	if err != nil {
		return nil, err
	}
	for _, v := range []float64{red, green, blue} {
		if v < 0 || v > 1 {
			return nil, errors.Validation(op, "color components must be between 0 and 1")
		}
	}

	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	index, err := nodeIndexParam(ctx, graph, data)
	if err != nil {
		return nil, err
	}
	ok, err := graph.SetNodeColor(ctx, index, red, green, blue)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetNodeColor(%d) returned false", index))
	}
	return map[string]any{"set": true, "index": index}, nil
}

func opApplyLUT(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.apply_lut"
	path, err := stringParam(data, "path")
	if err != nil {
		return nil, err
	}

	graph, cleanup, err := currentNodeGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	index, err := nodeIndexParam(ctx, graph, data)
	if err != nil {
		return nil, err
	}
	ok, err := graph.SetLUT(ctx, index, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetLUT(%d, %q) returned false; check the path is visible to the grading host", index, path))
	}
	return map[string]any{"applied": true, "index": index, "path": path}, nil
}
