package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

func registerMediaOps(r *Registry) {
	r.register("get_media_pool_items", opGetMediaPoolItems)
	r.register("import_media", opImportMedia)
	r.register("create_bin", opCreateBin)
	r.register("list_bins", opListBins)
	r.register("move_clip_to_bin", opMoveClipToBin)
	r.register("add_clip_to_timeline", opAddClipToTimeline)
	r.register("get_clip_info", opGetClipInfo)
	r.register("set_clip_property", opSetClipProperty)
}

func currentMediaPool(ctx context.Context, d *Deps) (*resolve.MediaPool, func(), error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	pool, err := project.MediaPool(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	release := func() {
		pool.Release(ctx)
		cleanup()
	}
	return pool, release, nil
}

// findBin walks the folder tree under root for a bin with the given
// name, depth first. The caller releases the returned folder.
func findBin(ctx context.Context, root *resolve.Folder, name string) (*resolve.Folder, error) {
	subs, err := root.SubFolders(ctx)
	if err != nil {
		return nil, err
	}
	var found *resolve.Folder
	for _, sub := range subs {
		if found != nil {
			sub.Release(ctx)
			continue
		}
		subName, err := sub.Name(ctx)
		if err == nil && subName == name {
			found = sub
			continue
		}
		nested, err := findBin(ctx, sub, name)
		sub.Release(ctx)
		if err == nil && nested != nil {
			found = nested
		}
	}
	return found, nil
}

// findClipInFolder looks for a clip by exact name in folder and all
// its subfolders. The caller releases the returned item.
func findClipInFolder(ctx context.Context, folder *resolve.Folder, name string) (*resolve.MediaPoolItem, error) {
	clips, err := folder.Clips(ctx)
	if err != nil {
		return nil, err
	}
	var found *resolve.MediaPoolItem
	for _, clip := range clips {
		if found != nil {
			clip.Release(ctx)
			continue
		}
		clipName, err := clip.Name(ctx)
		if err == nil && clipName == name {
			found = clip
			continue
		}
		clip.Release(ctx)
	}
	if found != nil {
		return found, nil
	}
	subs, err := folder.SubFolders(ctx)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if found == nil {
			nested, err := findClipInFolder(ctx, sub, name)
			if err == nil && nested != nil {
				found = nested
			}
		}
		sub.Release(ctx)
	}
	return found, nil
}

func opGetMediaPoolItems(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.get_media_pool_items"
	binName, err := optionalString(data, "bin", "")
	if err != nil {
		return nil, err
	}

	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root, err := pool.RootFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer root.Release(ctx)

	folder := root
	if binName != "" {
		bin, err := findBin(ctx, root, binName)
		if err != nil {
			return nil, err
		}
		if bin == nil {
			return nil, errors.NotFound(op, fmt.Sprintf("bin %q not found", binName))
		}
		defer bin.Release(ctx)
		folder = bin
	}

	clips, err := folder.Clips(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(clips))
	for _, clip := range clips {
		if name, err := clip.Name(ctx); err == nil {
			names = append(names, name)
		}
		clip.Release(ctx)
	}
	return map[string]any{"clips": names, "count": len(names)}, nil
}

func opImportMedia(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.import_media"
	paths, err := stringsParam(data, "paths")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Validation(op, "paths must not be empty")
	}

	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	items, err := pool.ImportMedia(ctx, paths)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name, err := item.Name(ctx); err == nil {
			names = append(names, name)
		}
		item.Release(ctx)
	}
	return map[string]any{"imported": names, "count": len(names)}, nil
}

func opCreateBin(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.create_bin"
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}
	parentName, err := optionalString(data, "parent", "")
	if err != nil {
		return nil, err
	}

	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root, err := pool.RootFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer root.Release(ctx)

	parent := root
	if parentName != "" {
		bin, err := findBin(ctx, root, parentName)
		if err != nil {
			return nil, err
		}
		if bin == nil {
			return nil, errors.NotFound(op, fmt.Sprintf("parent bin %q not found", parentName))
		}
		defer bin.Release(ctx)
		parent = bin
	}

	folder, err := pool.AddSubFolder(ctx, parent, name)
	if err != nil {
		return nil, err
	}
	folder.Release(ctx)
	return map[string]any{"created": true, "name": name}, nil
}

func listBinTree(ctx context.Context, folder *resolve.Folder, prefix string, out *[]string) {
	subs, err := folder.SubFolders(ctx)
	if err != nil {
		return
	}
	for _, sub := range subs {
		name, err := sub.Name(ctx)
		if err == nil {
			full := name
			if prefix != "" {
				full = prefix + "/" + name
			}
			*out = append(*out, full)
			listBinTree(ctx, sub, full, out)
		}
		sub.Release(ctx)
	}
}

func opListBins(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root, err := pool.RootFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer root.Release(ctx)

	bins := []string{}
	listBinTree(ctx, root, "", &bins)
	return map[string]any{"bins": bins, "count": len(bins)}, nil
}

func opMoveClipToBin(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.move_clip_to_bin"
	clipName, err := stringParam(data, "clip")
	if err != nil {
		return nil, err
	}
	binName, err := stringParam(data, "bin")
	if err != nil {
		return nil, err
	}

	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root, err := pool.RootFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer root.Release(ctx)

	bin, err := findBin(ctx, root, binName)
	if err != nil {
		return nil, err
	}
	if bin == nil {
		return nil, errors.NotFound(op, fmt.Sprintf("bin %q not found", binName))
	}
	defer bin.Release(ctx)

	clip, err := findClipInFolder(ctx, root, clipName)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, errors.NotFound(op, fmt.Sprintf("clip %q not found", clipName))
	}
	defer clip.Release(ctx)

	ok, err := pool.MoveClips(ctx, []*resolve.MediaPoolItem{clip}, bin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("MoveClips(%q) returned false", clipName))
	}
	return map[string]any{"moved": true, "clip": clipName, "bin": binName}, nil
}

func opAddClipToTimeline(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.add_clip_to_timeline"
	clipName, err := stringParam(data, "clip")
	if err != nil {
		return nil, err
	}

	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root, err := pool.RootFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer root.Release(ctx)

	clip, err := findClipInFolder(ctx, root, clipName)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, errors.NotFound(op, fmt.Sprintf("clip %q not found in the media pool", clipName))
	}
	defer clip.Release(ctx)

	ok, err := pool.AppendToTimeline(ctx, []*resolve.MediaPoolItem{clip})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("AppendToTimeline(%q) returned false; is a timeline open?", clipName))
	}
	return map[string]any{"added": true, "clip": clipName}, nil
}

func opGetClipInfo(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.get_clip_info"
	clipName, err := stringParam(data, "clip")
	if err != nil {
		return nil, err
	}

	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root, err := pool.RootFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer root.Release(ctx)

	clip, err := findClipInFolder(ctx, root, clipName)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, errors.NotFound(op, fmt.Sprintf("clip %q not found", clipName))
	}
	defer clip.Release(ctx)

	props, err := clip.ClipProperties(ctx)
	if err != nil {
		return nil, err
	}
	// Drop noisy empty entries so the payload stays readable.
	info := make(map[string]any, len(props))
	for k, v := range props {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		info[k] = v
	}
	return map[string]any{"name": clipName, "properties": info}, nil
}

func opSetClipProperty(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_clip_property"
	clipName, err := stringParam(data, "clip")
	if err != nil {
		return nil, err
	}
	key, err := stringParam(data, "key")
	if err != nil {
		return nil, err
	}
	value, err := stringParam(data, "value")
	if err != nil {
		return nil, err
	}

	pool, cleanup, err := currentMediaPool(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root, err := pool.RootFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer root.Release(ctx)

	clip, err := findClipInFolder(ctx, root, clipName)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, errors.NotFound(op, fmt.Sprintf("clip %q not found", clipName))
	}
	defer clip.Release(ctx)

	ok, err := clip.SetClipProperty(ctx, key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetClipProperty(%q, %q) returned false", key, value))
	}
	return map[string]any{"set": true, "clip": clipName, "key": key, "value": value}, nil
}
