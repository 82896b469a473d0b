package source

import "fmt"

// districts is the static configuration for the 16 Busan district boards.
// Ordering is alphabetical by code and determines crawl order.
//
// Selector values mirror each board's live markup; they are the most
// fragile part of the system and the usual thing to update when a district
// redesigns its site.
var districts = []Descriptor{
	{
		Code:               "BUKGU",
		Name:               "북구",
		BaseURL:            "https://www.bsbukgu.go.kr",
		ListURLFormat:      "https://www.bsbukgu.go.kr/board/list.bsbukgu?boardId=BBS_0000244&menuCd=DOM_000000102014000000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#conts > div.board-list-wrap > table > tbody",
		ContentSelector:    "#conts > div.board-view-wrap > div",
		PaginationSelector: "#conts > div.paging-wrap",
	},
	{
		Code:               "DONGGU",
		Name:               "동구",
		BaseURL:            "https://www.bsdonggu.go.kr",
		ListURLFormat:      "https://www.bsdonggu.go.kr/welfare/board/list.donggu?boardId=BBS_0000355&menuCd=DOM_000000206010000000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#contents > table",
		ContentSelector:    "#contents > table > tbody > tr.bbs_content_area > td",
		PaginationSelector: "#contents > div.paging",
	},
	{
		Code:               "DONGNAE",
		Name:               "동래구",
		BaseURL:            "https://www.dongnae.go.kr",
		ListURLFormat:      "https://www.dongnae.go.kr/board/list.dongnae?boardId=BBS_0000363&listRow=10&listCel=1&menuCd=DOM_000000509002000000&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#contents > div > table > tbody",
		ContentSelector:    "#view > table > tbody",
		PaginationSelector: "#contents > div > div.paging2",
		// The content table embeds a view-count cell that changes on every
		// fetch; drop it so re-scrapes of an unchanged notice dedup cleanly.
		StripSelectors: []string{"#view > table > tbody > tr:nth-child(2) > td:nth-child(6)"},
	},
	{
		Code:          "GANGSEO",
		Name:          "강서구",
		BaseURL:       "https://www.bsgangseo.go.kr",
		ListURLFormat: "https://www.bsgangseo.go.kr/welfare/board/post/list.do?bcIdx=567&mid=0604030000",
		UsePost:       true,
		PostForm: map[string]string{
			"cancelUrl":  "/welfare/board/post/list.do?bcIdx=567&mid=0604030000",
			"searchType": "0",
			"searchTxt":  "",
		},
		Mode:            ModeOnclick,
		ContentSelector: "div.view_cont",
	},
	{
		Code:               "GEUMJEONG",
		Name:               "금정구",
		BaseURL:            "https://www.geumjeong.go.kr",
		ListURLFormat:      "https://www.geumjeong.go.kr/board/list.geumj?boardId=BBS_0000372&menuCd=DOM_000000126020001000&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#print > table > tbody",
		ContentSelector:    "#print > table > tbody > tr:nth-child(3) > td",
		PaginationSelector: "#print > div.page",
		ForceTor:           true,
	},
	{
		Code:               "GIJANG",
		Name:               "기장군",
		BaseURL:            "https://www.gijang.go.kr",
		ListURLFormat:      "https://www.gijang.go.kr/board/list.gijang?boardId=BBS_0000157&menuCd=DOM_000000103008001000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#conts > div > table",
		ContentSelector:    "#conts > div > table > tbody",
		PaginationSelector: "#conts > div > div.pageing",
		TableKeyValue:      true,
	},
	{
		Code:               "HAEUNDAE",
		Name:               "해운대구",
		BaseURL:            "https://www.haeundae.go.kr",
		ListURLFormat:      "https://www.haeundae.go.kr/edu/board/list.do?boardId=BBS_0000465&menuCd=DOM_000000104001009000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#font_size > div.table.respond > table",
		ContentSelector:    "#font_size > article > table > tbody",
		PaginationSelector: "#font_size > div.boardPage",
		// Blocks datacenter traffic intermittently; relies on the
		// fetcher's automatic Tor failover rather than ForceTor.
	},
	{
		Code:               "JINGU",
		Name:               "부산진구",
		BaseURL:            "https://www.busanjin.go.kr",
		ListURLFormat:      "https://www.busanjin.go.kr/board/list.busanjin?boardId=BBS_0000260&menuCd=DOM_000000107005004000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#sub_contentnw > div > div.board-list > table > tbody",
		ContentSelector:    "#sub_contentnw > div > div.board-view > div > div.substan",
		PaginationSelector: "#sub_contentnw > div > ul",
		ForceTor:           true,
	},
	{
		Code:               "JUNGGU",
		Name:               "중구",
		BaseURL:            "https://www.bsjunggu.go.kr",
		ListURLFormat:      "https://www.bsjunggu.go.kr/board/list.junggu?boardId=BBS_0000184&menuCd=DOM_000000401006000000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#content > table",
		ContentSelector:    "#content > div.bbs_vtype > div",
		PaginationSelector: "#content > div.page",
		ForceTor:           true,
	},
	{
		Code:               "NAMGU",
		Name:               "남구",
		BaseURL:            "https://www.bsnamgu.go.kr",
		ListURLFormat:      "https://www.bsnamgu.go.kr/board/list.namgu?boardId=BBS_0000315&menuCd=DOM_000000105001009000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#conts > table > tbody",
		ContentSelector:    "#conts > div > table > tbody",
		PaginationSelector: "#conts > div.paging",
	},
	{
		Code:               "SAHA",
		Name:               "사하구",
		BaseURL:            "https://www.saha.go.kr",
		ListURLFormat:      "https://www.saha.go.kr/portal/bbs/list.do?ptIdx=737&mId=0505050000&page=%d",
		Mode:               ModeOnclick,
		ListSelector:       "table.tableSt_list",
		ContentSelector:    "div.cont_box",
		PaginationSelector: "div.box_page",
	},
	{
		Code:               "SASANG",
		Name:               "사상구",
		BaseURL:            "https://www.sasang.go.kr",
		ListURLFormat:      "https://www.sasang.go.kr/board/list.sasang?boardId=BBS_0000268&menuCd=DOM_000000103009000000&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#content > table",
		ContentSelector:    "#content > div.bbs_vtype > div",
		PaginationSelector: "#content > div.page",
		ForceTor:           true,
	},
	{
		Code:               "SEOGU",
		Name:               "서구",
		BaseURL:            "https://www.bsseogu.go.kr",
		ListURLFormat:      "https://www.bsseogu.go.kr/board/list.bsseogu?boardId=BBS_0000214&menuCd=DOM_000000103001020000&orderBy=REGISTER_DATE%%20DESC&paging=ok&startPage=%d",
		Mode:               ModeBlog,
		ListSelector:       "#content > div.content-inner > div.content-inner > div.bloglist-wrap > ul",
		PaginationSelector: "#content > div.content-inner > div.content-inner > div.paging-wrap2",
		ContentClass:       "stxt",
	},
	{
		Code:               "SUYEONG",
		Name:               "수영구",
		BaseURL:            "https://www.suyeong.go.kr",
		ListURLFormat:      "https://www.suyeong.go.kr/city/board/list.suyeong?boardId=BBS_0000304&menuCd=DOM_000000103001015000&paging=ok&startPage=%d",
		Mode:               ModeSelector,
		ListSelector:       "#con_area > table > tbody",
		ContentSelector:    "#con_area > div.bbs_vtype > div",
		PaginationSelector: "#con_area > div.page",
	},
	{
		Code:               "YEONGDO",
		Name:               "영도구",
		BaseURL:            "https://www.yeongdo.go.kr",
		ListURLFormat:      "https://www.yeongdo.go.kr/02418/02419/04252.web?gcode=1312&cpage=%d",
		Mode:               ModeImageFallback,
		ListSelector:       "ul.lst1",
		ContentSelector:    "#body_content > div > div.bbs1view1 > div.attach1 > ul > li > a.b1.download",
		PaginationSelector: "#listForm > div:nth-child(7) > div",
		PageParamPattern:   `cpage=([0-9]{1,5})`,
	},
	{
		Code:               "YEONJE",
		Name:               "연제구",
		BaseURL:            "https://www.yeonje.go.kr",
		ListURLFormat:      "https://www.yeonje.go.kr/portal/bbs/list.do?ptIdx=234&mId=0206100000",
		UsePost:            true,
		PostForm:           map[string]string{},
		Mode:               ModeOnclick,
		ListSelector:       "table.bod_list",
		ContentSelector:    "#conts > div > div.bod_view > div.view_cont",
		PaginationSelector: "div.bod_page",
	},
}

// All returns descriptors for every configured district, in crawl order.
// The returned slice is a copy; descriptors themselves are value types.
func All() []Descriptor {
	out := make([]Descriptor, len(districts))
	copy(out, districts)
	return out
}

// ByCode returns the descriptor for the given district code.
func ByCode(code string) (Descriptor, error) {
	for _, d := range districts {
		if d.Code == code {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("unknown district code: %s", code)
}
