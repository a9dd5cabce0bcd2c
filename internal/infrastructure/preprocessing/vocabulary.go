package preprocessing

// DomainWords 表单中可勾选的领域词
var DomainWords = []string{
	"acne", "aceites", "afeitado", "anticaida", "aroma", "barba", "caida", "canas", "cara",
	"coloracion", "corporal", "crecimiento", "cuerpo", "delicada", "ecologico", "esencial",
	"exfoliante", "facial", "fortalecer", "fragancia", "graso", "hidrata", "marina", "natural",
	"organico", "parabenos", "parfum", "pelo", "poros", "tinte", "tradicionales", "vegano",
}

// Ingredients 表单中可勾选的成分
var Ingredients = []string{
	"aceite de almendras", "aceite de argan", "aceite de coco", "aceite de jojoba",
	"aceite de ricino", "aceite de romero", "acido-salicilico", "aloe vera", "antioxidantes",
	"arcilla", "cafe", "cafeina", "canela", "carbon", "citric", "curcuma", "glicerina", "ginseng",
	"jengibre", "madera", "mango", "manteca de karite", "menta", "minerales", "sal rosa", "sandalo",
	"vitamina c", "zinc",
}
