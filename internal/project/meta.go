// Package project manages the editor's project folders around the draft
// file: registration metadata, media path rewriting, and portable
// export/import archives.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/andremarcal/draftsync/internal/draft"
)

// Meta file names fixed by the host editor.
const (
	RootMetaFileName = "root_meta_info.json"
	metaFileName     = "draft_meta_info.json"
	infoFileName     = "draft_info.json"
)

func microStamp() int64 {
	return time.Now().UnixMicro()
}

func slashed(p string) string {
	return filepath.ToSlash(p)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &draft.IoError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &draft.IoError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// WriteInfo writes the project's draft_info.json.
func WriteInfo(projectDir, draftID, name string) error {
	stamp := microStamp()
	info := map[string]any{
		"draft_cloud_last_action_download":    false,
		"draft_cloud_materials":               []any{},
		"draft_cloud_purchase_info":           "",
		"draft_cloud_template_id":             "",
		"draft_cloud_tutorial_info":           "",
		"draft_cloud_videocut_purchase_info":  "",
		"draft_fold_path":                     slashed(projectDir),
		"draft_id":                            draftID,
		"draft_is_ai_shorts":                  false,
		"draft_is_invisible":                  false,
		"draft_materials":                     []any{},
		"draft_materials_copied_info":         []any{},
		"draft_name":                          name,
		"draft_new_version":                   "",
		"draft_timeline_materials_size":       0,
		"tm_draft_create":                     stamp,
		"tm_draft_modified":                   stamp,
	}
	return writeJSON(filepath.Join(projectDir, infoFileName), info)
}

// WriteMetaInfo writes draft_meta_info.json, which the editor requires
// before it recognizes the folder as a project.
func WriteMetaInfo(projectDir, draftID, name, rootPath string) error {
	stamp := microStamp()
	materials := make([]any, 0, 7)
	for _, typ := range []int{0, 1, 2, 3, 6, 7, 8} {
		materials = append(materials, map[string]any{"type": typ, "value": []any{}})
	}
	meta := map[string]any{
		"cloud_draft_cover":                  true,
		"cloud_draft_sync":                   true,
		"draft_cloud_last_action_download":   false,
		"draft_cloud_purchase_info":          "",
		"draft_cloud_template_id":            "",
		"draft_cloud_tutorial_info":          "",
		"draft_cloud_videocut_purchase_info": "",
		"draft_cover":                        "",
		"draft_enterprise_info": map[string]any{
			"draft_enterprise_extra": "",
			"draft_enterprise_id":    "",
			"draft_enterprise_name":  "",
			"enterprise_material":    []any{},
		},
		"draft_fold_path":                 slashed(projectDir),
		"draft_id":                        draftID,
		"draft_is_ai_shorts":              false,
		"draft_is_article_video_draft":    false,
		"draft_is_cloud_temp_draft":       false,
		"draft_is_from_deeplink":          "false",
		"draft_is_invisible":              false,
		"draft_is_web_article_video":      false,
		"draft_materials":                 materials,
		"draft_materials_copied_info":     []any{},
		"draft_name":                      name,
		"draft_need_rename_folder":        false,
		"draft_new_version":               "",
		"draft_removable_storage_device":  "",
		"draft_root_path":                 slashed(rootPath),
		"draft_segment_extra_info":        []any{},
		"streaming_edit_draft_ready":      true,
		"tm_draft_create":                 stamp,
		"tm_draft_modified":               stamp,
		"tm_draft_removed":                0,
		"tm_duration":                     0,
	}
	return writeJSON(filepath.Join(projectDir, metaFileName), meta)
}

// RegisterInRootMeta prepends the project to the editor's root registry
// so it shows up in the project list, creating the registry when it does
// not exist yet.
func RegisterInRootMeta(rootPath, projectDir, draftID, name string) error {
	rootMetaPath := filepath.Join(rootPath, RootMetaFileName)
	rootMeta := map[string]any{
		"all_draft_store": []any{},
		"draft_ids":       0,
		"root_path":       slashed(rootPath),
	}
	if data, err := os.ReadFile(rootMetaPath); err == nil {
		// An unreadable registry is rebuilt rather than fatal.
		_ = json.Unmarshal(data, &rootMeta)
	}

	stamp := microStamp()
	entry := map[string]any{
		"cloud_draft_cover":                  true,
		"cloud_draft_sync":                   true,
		"draft_cloud_last_action_download":   false,
		"draft_cloud_purchase_info":          "",
		"draft_cloud_template_id":            "",
		"draft_cloud_tutorial_info":          "",
		"draft_cloud_videocut_purchase_info": "",
		"draft_cover":                        "",
		"draft_fold_path":                    slashed(projectDir),
		"draft_id":                           draftID,
		"draft_is_ai_shorts":                 false,
		"draft_is_cloud_temp_draft":          false,
		"draft_is_invisible":                 false,
		"draft_is_web_article_video":         false,
		"draft_json_file":                    slashed(filepath.Join(projectDir, draft.ContentFileName)),
		"draft_name":                         name,
		"draft_new_version":                  "",
		"draft_root_path":                    slashed(rootPath),
		"draft_timeline_materials_size":      0,
		"draft_type":                         "",
		"draft_web_article_video_enter_from": "",
		"streaming_edit_draft_ready":         true,
		"tm_draft_cloud_completed":           "",
		"tm_draft_cloud_entry_id":            -1,
		"tm_draft_cloud_modified":            0,
		"tm_draft_cloud_parent_entry_id":     -1,
		"tm_draft_cloud_space_id":            -1,
		"tm_draft_cloud_user_id":             -1,
		"tm_draft_create":                    stamp,
		"tm_draft_modified":                  stamp,
		"tm_draft_removed":                   0,
		"tm_duration":                        0,
	}

	store, _ := rootMeta["all_draft_store"].([]any)
	rootMeta["all_draft_store"] = append([]any{entry}, store...)
	return writeJSON(rootMetaPath, rootMeta)
}

// Register writes both per-project meta files and adds the project to
// the root registry of the directory containing it.
func Register(projectDir, draftID, name string) error {
	rootPath := filepath.Dir(projectDir)
	if err := WriteInfo(projectDir, draftID, name); err != nil {
		return err
	}
	if err := WriteMetaInfo(projectDir, draftID, name, rootPath); err != nil {
		return err
	}
	return RegisterInRootMeta(rootPath, projectDir, draftID, name)
}
