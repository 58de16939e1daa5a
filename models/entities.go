package models

// CatalogueEntry is one card on an encyclopedia list page.
type CatalogueEntry struct {
	Name             string `json:"name"`
	ItemID           string `json:"item_id"`
	ImageURL         string `json:"image_url,omitempty"`
	AttributeIconURL string `json:"attribute_icon_url,omitempty"`
}

// MediaEntry is one card on a media or strategy guide collection page.
type MediaEntry struct {
	Title    string `json:"title"`
	CoverURL string `json:"cover_url,omitempty"`
	ItemID   string `json:"item_id"`
}

// WeaponDetails is the record extracted from a weapon item page.
type WeaponDetails struct {
	ImageURL    string            `json:"image_url,omitempty"`
	BaseInfo    map[string]string `json:"base_info"`
	Description map[string]string `json:"description"`
}

// CharacterDetails is the record extracted from a resonator item page.
type CharacterDetails struct {
	Info           CharacterInfo             `json:"info"`
	Profile        CharacterProfile          `json:"profile"`
	Statistics     map[int]map[string]string `json:"statistics"`
	FightingStyles []FightingStyle           `json:"fighting_styles"`
	Skills         []Skill                   `json:"skills"`
	ResonanceChain []ResonanceChainNode      `json:"resonance_chain"`
	Breakthroughs  []Breakthrough            `json:"breakthroughs"`
}

// CharacterInfo is the headline block of a character page.
type CharacterInfo struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	RoleDescriptionTitle string   `json:"role_description_title,omitempty"`
	RoleDescription      string   `json:"role_description,omitempty"`
	RoleTags             []string `json:"role_tags,omitempty"`
	RoleImages           []string `json:"role_images,omitempty"`
}

// CharacterProfile is the additional-info table of a character page.
type CharacterProfile struct {
	Identity       string `json:"identity,omitempty"`
	Affiliation    string `json:"affiliation,omitempty"`
	SpecialCuisine string `json:"special_cuisine,omitempty"`
	ChineseCV      string `json:"chinese_cv,omitempty"`
	JapaneseCV     string `json:"japanese_cv,omitempty"`
	EnglishCV      string `json:"english_cv,omitempty"`
	KoreanCV       string `json:"korean_cv,omitempty"`
	ReleaseVersion string `json:"release_version,omitempty"`
}

// FightingStyle is one row of a fighting style table.
type FightingStyle struct {
	IconURL     string `json:"icon_url,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Skill is one tab of the skill introduction block. Items maps a move name
// to its description.
type Skill struct {
	Kind        string            `json:"kind"`
	Name        string            `json:"name,omitempty"`
	IconURL     string            `json:"icon_url,omitempty"`
	Description string            `json:"description,omitempty"`
	Items       map[string]string `json:"items,omitempty"`
}

// ResonanceChainNode is one sequence node of a character.
type ResonanceChainNode struct {
	Name        string `json:"name"`
	IconURL     string `json:"icon_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// Breakthrough is one ascension stage.
type Breakthrough struct {
	Stage         int        `json:"stage"`
	RequiredLevel string     `json:"required_level,omitempty"`
	LevelCap      string     `json:"level_cap,omitempty"`
	Materials     []Material `json:"materials"`
}

// Material is one ascension material and its quantity.
type Material struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
	Count   string `json:"count,omitempty"`
}

// CharacterGuide is the record extracted from a character strategy page.
type CharacterGuide struct {
	Name                     string             `json:"name"`
	Description              string             `json:"description,omitempty"`
	ProfileImageURL          string             `json:"profile_image_url,omitempty"`
	AttributeImageURL        string             `json:"attribute_image_url,omitempty"`
	Brief                    string             `json:"brief,omitempty"`
	RoleTags                 map[string]string  `json:"role_tags,omitempty"`
	FightingStyles           []FightingStyle    `json:"fighting_styles,omitempty"`
	SkillPointRecommendation string             `json:"skill_point_recommendation,omitempty"`
	CoreMechanism            string             `json:"core_mechanism,omitempty"`
	OutputProcess            map[string]string  `json:"output_process,omitempty"`
	EchoSets                 []EchoSetRecommend `json:"echo_sets,omitempty"`
}

// EchoSetRecommend is one recommended echo set on a guide page.
type EchoSetRecommend struct {
	Name             string   `json:"name"`
	AttributeIconURL string   `json:"attribute_icon_url,omitempty"`
	IconURLs         []string `json:"icon_urls,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// WallpaperDetails groups wallpapers by character and by set.
type WallpaperDetails struct {
	Title  string                `json:"title"`
	Groups []CharacterWallpapers `json:"groups"`
}

// CharacterWallpapers is the wallpaper block of one character.
type CharacterWallpapers struct {
	CharacterName string         `json:"character_name"`
	Sets          []WallpaperSet `json:"sets"`
}

// WallpaperSet is a titled set of wallpaper image URLs.
type WallpaperSet struct {
	Title string   `json:"title"`
	URLs  []string `json:"urls"`
}

// EmoticonDetails is a titled emoticon pack.
type EmoticonDetails struct {
	Title string   `json:"title"`
	URLs  []string `json:"urls"`
}

// FanArt is the image list of a fan-art post.
type FanArt struct {
	ImageURLs []string `json:"image_urls"`
}

// VideoDetails describes a promotional video page.
type VideoDetails struct {
	Title        string `json:"title"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// GuideArticle is a free-form strategy page reduced to Markdown.
type GuideArticle struct {
	Title           string `json:"title"`
	Byline          string `json:"byline,omitempty"`
	Excerpt         string `json:"excerpt,omitempty"`
	Markdown        string `json:"markdown"`
	EstimatedTokens int    `json:"estimated_tokens"`
}
