package words

// builtinLists are the default word banks shipped with the server.
// Deployments override them per language via LoadFromFile.
var builtinLists = map[string][]string{
	"en": {
		"apple", "banana", "bicycle", "bridge", "butterfly", "cactus",
		"camera", "campfire", "candle", "castle", "caterpillar", "cloud",
		"compass", "crocodile", "cupcake", "dolphin", "dragon", "drum",
		"eagle", "elephant", "envelope", "firework", "flamingo", "flashlight",
		"fountain", "giraffe", "glacier", "guitar", "hammer", "hamburger",
		"helicopter", "hot-air balloon", "ice cream", "igloo", "island",
		"jellyfish", "kangaroo", "kayak", "keyboard", "ladder", "lantern",
		"lighthouse", "lightning", "mailbox", "mermaid", "microscope",
		"moustache", "mushroom", "octopus", "ostrich", "paintbrush",
		"palm tree", "parachute", "peacock", "penguin", "piano", "pineapple",
		"pirate", "pyramid", "rainbow", "robot", "rocket", "rollercoaster",
		"sandcastle", "saxophone", "scarecrow", "scissors", "skateboard",
		"snowman", "spaceship", "sphinx", "submarine", "sunflower",
		"telescope", "tornado", "tractor", "treasure", "trophy", "turtle",
		"umbrella", "unicorn", "vacuum", "volcano", "waterfall", "whale",
		"windmill", "wizard", "zeppelin",
	},
	"de": {
		"ampel", "bahnhof", "besen", "blitz", "brezel", "brille",
		"dachboden", "drachen", "eichhörnchen", "fernseher", "feuerwehr",
		"flasche", "geige", "gespenst", "gießkanne", "handschuh", "igel",
		"kaktus", "kerze", "koffer", "kran", "kuchen", "laterne",
		"leuchtturm", "luftballon", "maulwurf", "mülltonne", "pinguin",
		"pilz", "regenbogen", "ritter", "schaukel", "schildkröte",
		"schlüssel", "schneemann", "schornstein", "seifenblase", "spinne",
		"tannenbaum", "taucher", "traktor", "vogelscheuche", "vulkan",
		"wasserfall", "windmühle", "zahnbürste", "zebra", "zelt",
	},
	"es": {
		"abeja", "árbol", "ballena", "bicicleta", "bruja", "caballo",
		"cactus", "castillo", "cohete", "dragón", "elefante", "escalera",
		"fantasma", "faro", "fuego", "globo", "guitarra", "helado",
		"iglesia", "isla", "jirafa", "lámpara", "luna", "mariposa",
		"molino", "montaña", "nube", "paraguas", "payaso", "pingüino",
		"pirata", "pulpo", "reloj", "robot", "semáforo", "serpiente",
		"sirena", "sombrero", "submarino", "tiburón", "tortuga", "tractor",
		"unicornio", "volcán", "zanahoria",
	},
}
